// Package engine sequences agent iterations: it decides, from what the
// terminal state reports, when to restart the agent, pause for the user, or
// declare the task finished.
package engine

// State is the single authoritative iteration state. Exactly one is active
// at a time.
type State int

const (
	// Running means the agent subprocess is live.
	Running State = iota
	// Completed is terminal: the control loop exits.
	Completed
	// NeedsRestart means the iteration ended but more work remains.
	NeedsRestart
	// WaitingDelay is the pause before the next iteration spawns.
	WaitingDelay
	// WaitingUserConfirm keeps an interactive session open after a stop
	// hook while the child is still alive (pause-between-stories mode).
	WaitingUserConfirm
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case NeedsRestart:
		return "NeedsRestart"
	case WaitingDelay:
		return "WaitingDelay"
	case WaitingUserConfirm:
		return "WaitingUserConfirm"
	}
	return "Unknown"
}

// Observation is everything the machine needs to decide the next state,
// sampled by the control loop on each poll.
type Observation struct {
	ChildExited     bool
	Completion      bool
	StopHook        bool
	AllStoriesPass  bool
	AtMaxIterations bool
	PauseOnStop     bool
	DelayElapsed    bool
	QuitRequested   bool
}

// Action tells the control loop what side effect accompanies a transition.
type Action int

const (
	// ActionNone: no side effect.
	ActionNone Action = iota
	// ActionKillChild: terminate the agent before stopping.
	ActionKillChild
	// ActionStartDelay: record the delay start time.
	ActionStartDelay
	// ActionRespawn: perform between-iteration bookkeeping and spawn the
	// next agent.
	ActionRespawn
	// ActionStopAtMax: terminal stop because the iteration cap was hit.
	ActionStopAtMax
)

// Transition is the machine's verdict for one poll.
type Transition struct {
	State  State
	Action Action
}

// Next computes the transition out of cur for the given observation. Pure
// and deterministic.
//
// A simultaneous child-exit and stop-hook resolves in favor of exit
// handling; the pause branch only applies while the child is provably
// still alive.
func Next(cur State, obs Observation) Transition {
	if obs.QuitRequested {
		return Transition{Completed, ActionKillChild}
	}

	switch cur {
	case Running:
		if obs.ChildExited {
			if obs.Completion || obs.AllStoriesPass {
				return Transition{Completed, ActionNone}
			}
			return Transition{NeedsRestart, ActionNone}
		}
		if obs.AllStoriesPass {
			return Transition{Completed, ActionKillChild}
		}
		if obs.StopHook {
			if obs.PauseOnStop {
				return Transition{WaitingUserConfirm, ActionNone}
			}
			return Transition{NeedsRestart, ActionNone}
		}
		return Transition{Running, ActionNone}

	case WaitingUserConfirm:
		if obs.ChildExited {
			if obs.Completion || obs.AllStoriesPass {
				return Transition{Completed, ActionNone}
			}
			return Transition{NeedsRestart, ActionNone}
		}
		return Transition{WaitingUserConfirm, ActionNone}

	case NeedsRestart:
		if obs.AtMaxIterations {
			return Transition{Completed, ActionStopAtMax}
		}
		return Transition{WaitingDelay, ActionStartDelay}

	case WaitingDelay:
		if !obs.DelayElapsed {
			return Transition{WaitingDelay, ActionNone}
		}
		if obs.AllStoriesPass {
			return Transition{Completed, ActionKillChild}
		}
		return Transition{Running, ActionRespawn}
	}

	return Transition{Completed, ActionNone}
}
