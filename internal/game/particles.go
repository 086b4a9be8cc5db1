package game

import (
	"math"
	"math/rand"
)

const (
	MaxParticles       = 512
	BurstPerBubble     = 8
	ParticleLifeFrames = 30
	burstSpeed         = 6.0
	particleDrag       = 0.92
)

// Particle is one cosmetic burst fragment. Purely visual: nothing in game
// logic reads particles back.
type Particle struct {
	Pos   Vec2  `json:"pos"`
	Vel   Vec2  `json:"vel"`
	Life  int   `json:"life"`
	Color Color `json:"color"`
}

// ParticleSystem holds a bounded pool of live particles. When full, new
// bursts overwrite the oldest entries instead of growing.
type ParticleSystem struct {
	max    int
	parts  []Particle
	ovrIdx int
}

func NewParticleSystem(max int) *ParticleSystem {
	if max <= 0 {
		max = MaxParticles
	}
	return &ParticleSystem{
		max:   max,
		parts: make([]Particle, 0, max),
	}
}

func (ps *ParticleSystem) add(p Particle) {
	if len(ps.parts) < ps.max {
		ps.parts = append(ps.parts, p)
		return
	}
	if ps.ovrIdx >= ps.max {
		ps.ovrIdx = 0
	}
	ps.parts[ps.ovrIdx] = p
	ps.ovrIdx++
}

// Burst spawns an explosion of fragments at center, fanned out by rng so
// replays with the same seed look the same.
func (ps *ParticleSystem) Burst(center Vec2, color Color, rng *rand.Rand) {
	for i := 0; i < BurstPerBubble; i++ {
		angle := rng.Float64() * 2 * math.Pi
		speed := burstSpeed * (0.5 + rng.Float64()*0.5)
		ps.add(Particle{
			Pos:   center,
			Vel:   NewVec2(math.Cos(angle)*speed, math.Sin(angle)*speed),
			Life:  ParticleLifeFrames,
			Color: color,
		})
	}
}

// Step integrates every particle one frame and drops the expired ones.
func (ps *ParticleSystem) Step() {
	alive := ps.parts[:0]
	for i := range ps.parts {
		p := ps.parts[i]
		p.Pos = p.Pos.Plus(p.Vel)
		p.Vel = p.Vel.Times(particleDrag)
		p.Life--
		if p.Life > 0 {
			alive = append(alive, p)
		}
	}
	ps.parts = alive
	if ps.ovrIdx > len(ps.parts) {
		ps.ovrIdx = 0
	}
}

func (ps *ParticleSystem) Len() int {
	return len(ps.parts)
}

func (ps *ParticleSystem) Clear() {
	ps.parts = ps.parts[:0]
	ps.ovrIdx = 0
}

// Snapshot copies the live particles for a state broadcast.
func (ps *ParticleSystem) Snapshot() []Particle {
	out := make([]Particle, len(ps.parts))
	copy(out, ps.parts)
	return out
}
