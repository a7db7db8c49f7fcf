package cloth_test

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/cloth"
)

var _ = Describe("Mesh simulation", func() {
	var (
		cfg     cloth.MeshConfig
		gravity = mgl64.Vec3{0, -9.8, 0}
	)

	BeforeEach(func() {
		cfg = cloth.DefaultMeshConfig()
		cfg.Width = 1
		cfg.Height = 1
		cfg.Density = 5
		cfg.Origin = mgl64.Vec3{0, 2, 0}
	})

	Describe("pinned points", func() {
		It("keeps position and velocity bit-identical across ticks", func() {
			cfg.Pins = []cloth.Pin{
				{I: 0, J: 0, Offset: mgl64.Vec3{0.05, 0, 0}},
				{I: 4, J: 0, Offset: mgl64.Vec3{-0.05, 0, 0}},
			}
			mesh, err := cloth.NewMesh(cfg)
			Expect(err).NotTo(HaveOccurred())

			left := *mesh.Point(0, 0)
			right := *mesh.Point(4, 0)

			for i := 0; i < 200; i++ {
				mesh.AddForce(mgl64.Vec3{12, 0, -12})
				mesh.Tick(0.01, gravity)
				Expect(mesh.Point(0, 0).Position).To(Equal(left.Position))
				Expect(mesh.Point(0, 0).Velocity).To(Equal(left.Velocity))
				Expect(mesh.Point(4, 0).Position).To(Equal(right.Position))
				Expect(mesh.Point(4, 0).Velocity).To(Equal(right.Velocity))
			}
		})

		It("is still relocated when it sits inside a collider", func() {
			mesh, err := cloth.NewMesh(cfg)
			Expect(err).NotTo(HaveOccurred())
			mesh.Pin(0, 0, mgl64.Vec3{})

			pinned := mesh.Point(0, 0).Position
			sphere, err := cloth.NewSphere(pinned.Add(mgl64.Vec3{0, -0.5, 0}), 1, 0.8)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 3; i++ {
				mesh.Tick(0.01, gravity, sphere)
				d := mesh.Point(0, 0).Position.Sub(sphere.Center).Len()
				Expect(d).To(BeNumerically("~", sphere.SafeDistance(), 1e-9))
				Expect(mesh.Point(0, 0).Fixed).To(BeTrue())
			}
		})

		It("starts moving again after unpin", func() {
			cfg.Pins = []cloth.Pin{{I: 0, J: 0}, {I: 4, J: 0}}
			mesh, err := cloth.NewMesh(cfg)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 50; i++ {
				mesh.Tick(0.01, gravity)
			}
			before := mesh.Point(4, 0).Position
			mesh.Unpin(4, 0)
			for i := 0; i < 50; i++ {
				mesh.Tick(0.01, gravity)
			}
			Expect(mesh.Point(4, 0).Position.Y()).To(BeNumerically("<", before.Y()))
		})
	})

	Describe("ground collisions", func() {
		It("never leaves a point below the plane", func() {
			cfg.Layout = cloth.Horizontal
			cfg.Origin = mgl64.Vec3{-0.5, 0.5, -0.5}
			mesh, err := cloth.NewMesh(cfg)
			Expect(err).NotTo(HaveOccurred())
			ground, err := cloth.NewGround(mgl64.Vec3{-10, 0, -10}, 20, 20, 0.9)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 300; i++ {
				mesh.Tick(0.01, gravity, ground)
				for _, p := range mesh.Points() {
					Expect(p.Position.Y()).To(BeNumerically(">=", ground.Height()-1e-9))
				}
			}
			Expect(mesh.IsFinite()).To(BeTrue())
		})
	})

	Describe("sphere collisions", func() {
		It("keeps every point outside the safety margin", func() {
			cfg.Layout = cloth.Horizontal
			cfg.Width = 3
			cfg.Height = 3
			cfg.Density = 4
			cfg.Origin = mgl64.Vec3{-1.5, 1.5, -1.5}
			mesh, err := cloth.NewMesh(cfg)
			Expect(err).NotTo(HaveOccurred())
			sphere, err := cloth.NewSphere(mgl64.Vec3{0, 0, 0}, 1, 0.8)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 400; i++ {
				mesh.Tick(0.005, gravity, sphere)
				for _, p := range mesh.Points() {
					d := p.Position.Sub(sphere.Center).Len()
					Expect(d).To(BeNumerically(">=", sphere.SafeDistance()-1e-9))
				}
			}
			Expect(mesh.IsFinite()).To(BeTrue())
		})

		It("settles a single falling point on top of the sphere", func() {
			sphere, err := cloth.NewSphere(mgl64.Vec3{0, 0, 0}, 1, 0.5)
			Expect(err).NotTo(HaveOccurred())
			p := cloth.NewMassPoint(mgl64.Vec3{0, 3, 0}, 1)

			dt := 0.01
			lastSpeed := -1.0
			contacts := 0
			for i := 0; i < 500; i++ {
				p.AddForce(gravity.Mul(p.Mass))
				p.Integrate(dt)
				if !sphere.Resolve(&p) {
					continue
				}
				contacts++
				speed := p.Velocity.Len()
				if lastSpeed >= 0 {
					Expect(speed).To(BeNumerically("<=", lastSpeed+1e-12))
				}
				lastSpeed = speed
			}

			Expect(contacts).To(BeNumerically(">", 0))
			Expect(p.Position.Sub(sphere.Center).Len()).To(BeNumerically("~", sphere.SafeDistance(), 1e-9))
			// steady state of v = f*(v - g*dt)
			bound := 0.5 * 9.8 * dt / (1 - 0.5)
			Expect(p.Velocity.Len()).To(BeNumerically("<=", bound+1e-9))
		})
	})

	Describe("convergence", func() {
		It("damps a sheet hanging from two corners without diverging", func() {
			cfg.Pins = []cloth.Pin{{I: 0, J: 0}, {I: 4, J: 0}}
			mesh, err := cloth.NewMesh(cfg)
			Expect(err).NotTo(HaveOccurred())

			window := func() float64 {
				sum := 0.0
				for i := 0; i < 200; i++ {
					mesh.Tick(0.005, gravity)
					Expect(mesh.IsFinite()).To(BeTrue())
					sum += mesh.VelocityNorm()
				}
				return sum / 200
			}

			first := window()
			for i := 0; i < 14; i++ {
				window()
			}
			last := window()

			Expect(last).To(BeNumerically("<", first))
			Expect(mesh.VelocityNorm()).To(BeNumerically("<", 0.05))
		})
	})

	Describe("strain limiting", func() {
		It("bounds structural strain of a heavily loaded sheet", func() {
			cfg.Pins = []cloth.Pin{{I: 0, J: 0}, {I: 4, J: 0}}
			cfg.Structural = 50
			cfg.Integrator = cloth.NewStrainLimited(20, 0.1)
			mesh, err := cloth.NewMesh(cfg)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 200; i++ {
				mesh.Tick(0.01, gravity)
			}
			Expect(mesh.IsFinite()).To(BeTrue())
			for _, s := range mesh.Springs() {
				if s.Kind == cloth.Structural {
					Expect(s.Strain(mesh.Points())).To(BeNumerically("<=", 0.15))
				}
			}
		})
	})
})
