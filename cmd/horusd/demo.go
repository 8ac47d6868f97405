package main

import (
	"errors"
	"math"
	"time"

	"github.com/horus-rt/horus/internal/catalog"
	"github.com/horus-rt/horus/internal/handle"
	"github.com/horus-rt/horus/internal/node"
	"github.com/horus-rt/horus/internal/resilience"
)

// plannerNode publishes a gently oscillating velocity command every tick.
// Registered at priority 0 (runs first) so downstream nodes observe the
// current tick's command rather than the previous one.
type plannerNode struct {
	pub  *handle.Publisher[catalog.Twist]
	tick int
}

func (p *plannerNode) Name() string { return "planner" }

func (p *plannerNode) Init(ctx *node.Context) bool {
	pub, err := node.CreatePublisher[catalog.Twist](ctx, "cmd_vel", catalog.TypeTwist)
	if err != nil {
		ctx.LogError("planner: failed to bind cmd_vel: " + err.Error())
		return false
	}
	p.pub = pub
	return true
}

func (p *plannerNode) Tick(ctx *node.Context) {
	p.tick++
	angular := 0.3 * math.Sin(float64(p.tick)/60.0)
	cmd := catalog.Twist{Linear: catalog.Vector3{X: 0.5}, Angular: catalog.Vector3{Z: angular}}
	_ = p.pub.Send(cmd)
}

func (p *plannerNode) Shutdown(ctx *node.Context) bool {
	_ = p.pub.Send(catalog.Twist{}.Stop())
	return true
}

// driverNode subscribes to cmd_vel, converts it into differential-drive
// wheel speeds, and writes them to the motor controller. The write is a
// blocking ioctl in a real deployment, so it runs behind a circuit breaker:
// a wedged controller trips the breaker instead of stalling the node's tick.
type driverNode struct {
	sub     *handle.Subscriber[catalog.Twist]
	breaker *resilience.Breaker
	tick    int
}

func (d *driverNode) Name() string { return "driver" }

func (d *driverNode) Init(ctx *node.Context) bool {
	sub, err := node.CreateSubscriber[catalog.Twist](ctx, "cmd_vel", catalog.TypeTwist)
	if err != nil {
		ctx.LogError("driver: failed to bind cmd_vel: " + err.Error())
		return false
	}
	d.sub = sub
	d.breaker = resilience.New("motor-controller", resilience.Settings{
		MaxProbes:     1,
		ResetInterval: 30 * time.Second,
		OpenTimeout:   2 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			ctx.LogWarn("driver: " + name + " breaker " + from.String() + " -> " + to.String())
		},
	})
	return true
}

func (d *driverNode) Tick(ctx *node.Context) {
	d.tick++
	var twist catalog.Twist
	ok, err := d.sub.Recv(&twist)
	if err != nil || !ok {
		return
	}
	wheels := catalog.DifferentialDriveCommand{}.FromTwist(twist.Linear.X, twist.Angular.Z, 0.3, 0.05)

	err = d.breaker.Execute(func() error { return d.writeToController(wheels) })
	if err != nil {
		if d.tick%60 == 0 {
			ctx.LogWarn("driver: motor controller write skipped: " + err.Error())
		}
		return
	}
	if d.tick%60 == 0 {
		ctx.LogInfo("wheel speeds sampled")
	}
}

// writeToController sends wheel speeds to the motor controller. Stubbed here
// as the demo has no physical device; a real driver would block on a serial
// or CAN write, which is exactly the call the breaker in Init guards.
func (d *driverNode) writeToController(wheels catalog.DifferentialDriveCommand) error {
	if !wheels.Valid() {
		return errors.New("controller not responding")
	}
	return nil
}

func (d *driverNode) Shutdown(ctx *node.Context) bool { return true }
