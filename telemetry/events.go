// Package telemetry provides cycle statistics, progress sampling and
// performance tracking for the swarm engine.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventDespawn
	EventCapture
	EventForcedCapture
	EventStuckKick
	EventSpawnDeferred
	EventCycleComplete
)

var eventNames = [...]string{"spawn", "despawn", "capture", "forced_capture", "stuck_kick", "spawn_deferred", "cycle_complete"}

// String returns the snake_case event name.
func (t EventType) String() string {
	if int(t) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[t]
}

// Event represents a single telemetry event.
type Event struct {
	Type    EventType
	Tick    int32
	SimTime float64 // Seconds since the cycle started
	AgentID uint32

	// Pixel coordinate for capture events
	X, Y int
}

// NewSpawnEvent creates an agent spawn event.
func NewSpawnEvent(tick int32, simTime float64, agentID uint32) Event {
	return Event{Type: EventSpawn, Tick: tick, SimTime: simTime, AgentID: agentID}
}

// NewDespawnEvent creates an event for an agent leaving the canvas margin.
func NewDespawnEvent(tick int32, simTime float64, agentID uint32) Event {
	return Event{Type: EventDespawn, Tick: tick, SimTime: simTime, AgentID: agentID}
}

// NewCaptureEvent creates an event for a pixel captured by an agent.
func NewCaptureEvent(tick int32, simTime float64, x, y int) Event {
	return Event{Type: EventCapture, Tick: tick, SimTime: simTime, X: x, Y: y}
}

// NewForcedCaptureEvent creates an event for a pixel lit by the final sweep.
func NewForcedCaptureEvent(tick int32, simTime float64, x, y int) Event {
	return Event{Type: EventForcedCapture, Tick: tick, SimTime: simTime, X: x, Y: y}
}

// NewStuckKickEvent creates an event for a randomized stuck agent.
func NewStuckKickEvent(tick int32, simTime float64, agentID uint32) Event {
	return Event{Type: EventStuckKick, Tick: tick, SimTime: simTime, AgentID: agentID}
}

// NewSpawnDeferredEvent creates an event for a wave skipped at the agent cap.
func NewSpawnDeferredEvent(tick int32, simTime float64) Event {
	return Event{Type: EventSpawnDeferred, Tick: tick, SimTime: simTime}
}

// NewCycleCompleteEvent creates an event for a cycle reaching full coverage.
func NewCycleCompleteEvent(tick int32, simTime float64) Event {
	return Event{Type: EventCycleComplete, Tick: tick, SimTime: simTime}
}
