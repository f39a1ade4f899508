package lifecycle

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Stepper advances the simulation by one tick. It returns false when the
// simulation is over.
type Stepper interface {
	Step() bool
}

// Positioner reports the module's position.
type Positioner interface {
	Position() r3.Vec
}

// Actuator drives the module's motors with normalised angles in [-1,1].
type Actuator interface {
	SetAngle(i int, v float64)
	Angle(i int) float64
}

// Connector is one docking connector of a module.
type Connector interface {
	EnablePresence()
	DisablePresence()
	// Present reports whether a peer connector is docked.
	Present() bool
	Lock()
	Unlock()
}

// Emitter sends a message on a radio channel.
type Emitter interface {
	Send(channel int, msg string) error
}

// Receiver is a bounded inbound queue bound to one channel.
type Receiver interface {
	Enable()
	Disable()
	QueueLength() int
	// Next pops the oldest message. The boolean is false on an empty queue.
	Next() (string, bool)
}

// Devices are the collaborators a controller drives.
type Devices struct {
	Stepper    Stepper
	GPS        Positioner // root only
	Motors     Actuator
	Connectors []Connector
	Emitter    Emitter
	// Angles receives sibling traffic on the module's angle channel.
	Angles Receiver
	// Death receives evolver death commands.
	Death Receiver
	// Genomes receives mate broadcasts; root only, enabled on fertility.
	Genomes Receiver
}

func (d Devices) check(cfg Config, mating MatingPolicy, death DeathPolicy) error {
	missing := func(name string) error {
		return fmt.Errorf("%w: %s on %s", ErrDeviceUnavailable, name, cfg.Module.Name)
	}
	switch {
	case d.Stepper == nil:
		return missing("stepper")
	case d.Motors == nil && cfg.Module.Motors > 0:
		return missing("motors")
	case d.Emitter == nil:
		return missing("emitter")
	case d.Angles == nil:
		return missing("angle receiver")
	case d.Death == nil && death == DeathByEvolver:
		return missing("death receiver")
	}
	if cfg.Module.Root {
		switch {
		case d.GPS == nil:
			return missing("gps")
		case d.Genomes == nil && mating == MatingByOrganisms:
			return missing("genome receiver")
		}
	}
	return nil
}

// drain pops every queued message and returns them in arrival order.
func drain(r Receiver) []string {
	if r == nil {
		return nil
	}
	var out []string
	for r.QueueLength() > 0 {
		msg, ok := r.Next()
		if !ok {
			break
		}
		out = append(out, msg)
	}
	return out
}
