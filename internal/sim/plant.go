package sim

// Plant is a second-order steering column: the commanded torque accelerates
// the wheel against viscous damping and a self-aligning spring.
//
//	accel = Gain*torque - Damping*rate - Stiffness*angle
type Plant struct {
	Gain      float64 `json:"gain" yaml:"gain"`
	Damping   float64 `json:"damping" yaml:"damping"`
	Stiffness float64 `json:"stiffness" yaml:"stiffness"`
}

// DefaultPlant is roughly a mid-size sedan at highway speed.
func DefaultPlant() *Plant {
	return &Plant{Gain: 400, Damping: 12, Stiffness: 8}
}

// plantState is [angle deg, rate deg/s].
type plantState [2]float64

func (p *Plant) derive(x plantState, torque float64) plantState {
	return plantState{
		x[1],
		p.Gain*torque - p.Damping*x[1] - p.Stiffness*x[0],
	}
}

// step advances the column by dt with classic RK4, torque held constant.
func (p *Plant) step(x plantState, torque, dt float64) plantState {
	k1 := p.derive(x, torque)
	k2 := p.derive(plantState{x[0] + dt*0.5*k1[0], x[1] + dt*0.5*k1[1]}, torque)
	k3 := p.derive(plantState{x[0] + dt*0.5*k2[0], x[1] + dt*0.5*k2[1]}, torque)
	k4 := p.derive(plantState{x[0] + dt*k3[0], x[1] + dt*k3[1]}, torque)

	dt6 := dt / 6.0
	var out plantState
	for i := range out {
		out[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}
