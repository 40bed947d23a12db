package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/nifview/pkg/math3d"
	"github.com/taigrr/nifview/pkg/render"
)

const viewHelp = `Controls:
  Mouse drag  - Rotate model
  Scroll, +/- - Zoom
  W/S/A/D     - Pitch and yaw
  B           - Select next bone
  [ / ]       - Bend selected bone
  K           - Toggle skinning
  N/T/G       - Toggle normals, tangents, bitangents
  O           - Toggle bone bounds
  M           - Cycle shaded, wireframe, points
  C           - Toggle vertex colors
  F           - Toggle double sided
  R           - Reset view and pose
  ?           - Toggle HUD
  Esc         - Quit`

func newViewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Draw a model in the terminal and pose its bones",
		Long:  "Draw a model in the terminal and pose its bones.\n\n" + viewHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.load(args[0])
			if err != nil {
				return err
			}
			return a.view(cmd.Context(), filepath.Base(args[0]), l)
		},
	}
	cmd.Flags().IntVar(&a.flags.FPS, "fps", 0, "target frames per second")
	return cmd
}

// HUD renders an overlay with model info and toggles.
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{filename: filename, polyCount: polyCount, fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter. Call once per frame.
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

var (
	hudBase  = lipgloss.NewStyle().Background(lipgloss.Color("#000000")).Foreground(lipgloss.Color("#FFFFFF"))
	hudFPS   = hudBase.Foreground(lipgloss.Color("#5FFF87"))
	hudTitle = hudBase.Bold(true)
	hudCount = hudBase.Foreground(lipgloss.Color("#5FD7FF")).Bold(true)
	hudBone  = hudBase.Foreground(lipgloss.Color("#FFAF00"))
)

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}

// Render draws the HUD rows straight to the terminal. The rows are always
// cleared so toggling the HUD off works.
func (h *HUD) Render(width, height int, vs *viewState, skinning bool, p *poser, stats render.Stats) {
	const clearLine = "\x1b[2K"
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)
	if !vs.ShowHUD {
		return
	}

	fmt.Print(moveTo(1, 1) + hudFPS.Render(fmt.Sprintf(" %.0f FPS ", h.fps)))
	title := " " + h.filename + " "
	fmt.Print(moveTo(1, max((width-lipgloss.Width(title))/2, 1)) + hudTitle.Render(title))
	count := fmt.Sprintf(" %d/%d tris ", stats.TrianglesDrawn, h.polyCount)
	fmt.Print(moveTo(1, max(width-lipgloss.Width(count), 1)) + hudCount.Render(count))

	modes := fmt.Sprintf(" %s %s skin  %s N  %s T  %s G  %s bounds  %s colors ",
		vs.Mode, check(skinning), check(vs.Vectors[render.VectorNormal]),
		check(vs.Vectors[render.VectorTangent]), check(vs.Vectors[render.VectorBitangent]),
		check(vs.BoneSpheres), check(vs.VertexColors))
	fmt.Print(moveTo(height, 1) + hudBase.Render(modes))

	if name, angle, ok := p.Selected(); ok {
		bone := fmt.Sprintf(" %s %+.0f° ", name, angle*180/math.Pi)
		fmt.Print(moveTo(height, max(width-lipgloss.Width(bone), 1)) + hudBone.Render(bone))
	}
}

const (
	zoomStep = 1.1
	minZoom  = 0.2
	maxZoom  = 10.0
)

func (a *app) view(ctx context.Context, filename string, l *loaded) error {
	vs, err := newViewState(a.cfg)
	if err != nil {
		return err
	}
	fps := a.cfg.Render.FPS

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	fb := render.NewFramebuffer(fbWidth, fbHeight)

	// The orbit keeps the model centered on the origin, so the camera is
	// framed once on the bind pose bounds.
	center := l.model.Center()
	camera := render.NewCamera()
	camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))
	camera.Frame(l.model.Bounds().Transform(orbit(center, 0, 0)))
	rasterizer := render.NewRasterizer(camera, fb)

	hud := NewHUD(filename, l.model.TriangleCount())
	rotation := NewRotationState(fps)
	pose := newPoser(l, fps)
	skinning := a.cfg.Skin.Enabled
	zoom := 1.0

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputTorque := struct{ pitch, yaw float64 }{}
	const torqueStrength = 3.0
	var mouseDown bool
	var lastMouseX, lastMouseY int

	// mu guards everything the event goroutine and the frame loop share.
	var mu sync.Mutex
	go func() {
		for ev := range term.Events() {
			mu.Lock()
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				termRenderer = render.NewTerminalRenderer(term, width, height)
				fbWidth, fbHeight = termRenderer.FramebufferSize()
				fb.Resize(fbWidth, fbHeight)
				rasterizer.Resize()
				camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c"):
					cancel()
				case ev.MatchString("w", "up"):
					inputTorque.pitch = -torqueStrength
				case ev.MatchString("s", "down"):
					inputTorque.pitch = torqueStrength
				case ev.MatchString("a", "left"):
					inputTorque.yaw = -torqueStrength
				case ev.MatchString("d", "right"):
					inputTorque.yaw = torqueStrength
				case ev.MatchString("+", "="):
					zoom = math.Min(maxZoom, zoom*zoomStep)
				case ev.MatchString("-", "_"):
					zoom = math.Max(minZoom, zoom/zoomStep)
				case ev.MatchString("r"):
					rotation.Reset()
					pose.Reset()
					zoom = 1
				case ev.MatchString("b"):
					pose.Next()
				case ev.MatchString("["):
					pose.Bend(-1)
				case ev.MatchString("]"):
					pose.Bend(1)
				case ev.MatchString("k"):
					skinning = !skinning
					for _, s := range l.shapes {
						s.SetSkinning(skinning)
					}
				case ev.MatchString("n"):
					vs.Vectors[render.VectorNormal] = !vs.Vectors[render.VectorNormal]
				case ev.MatchString("t"):
					vs.Vectors[render.VectorTangent] = !vs.Vectors[render.VectorTangent]
				case ev.MatchString("g"):
					vs.Vectors[render.VectorBitangent] = !vs.Vectors[render.VectorBitangent]
				case ev.MatchString("o"):
					vs.BoneSpheres = !vs.BoneSpheres
				case ev.MatchString("m", "x"):
					vs.cycleMode()
				case ev.MatchString("c"):
					vs.VertexColors = !vs.VertexColors
				case ev.MatchString("f"):
					vs.DoubleSided = !vs.DoubleSided
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					vs.ShowHUD = !vs.ShowHUD
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w", "up", "s", "down"):
					inputTorque.pitch = 0
				case ev.MatchString("a", "left", "d", "right"):
					inputTorque.yaw = 0
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					zoom = math.Min(maxZoom, zoom*zoomStep)
				case uv.MouseWheelDown:
					zoom = math.Max(minZoom, zoom/zoomStep)
				}
			}
			mu.Unlock()
		}
	}()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	targetDuration := time.Second / time.Duration(fps)
	lastFrame := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		mu.Lock()
		// Key release events are unreliable, so held torque decays.
		rotation.ApplyImpulse(inputTorque.pitch*dt, inputTorque.yaw*dt)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		rotation.Update()
		pose.Step()

		view := math3d.NewTransform(math3d.Identity3(), math3d.Zero3(), zoom).
			Mul(orbit(center, rotation.Yaw.Position, rotation.Pitch.Position))
		rasterizer.BeginFrame(vs.Background)
		drawModel(rasterizer, l, view, vs)

		termRenderer.Render(fb)
		err := termRenderer.Flush()
		if err == nil {
			hud.UpdateFPS()
			hud.Render(width, height, vs, skinning, pose, rasterizer.Stats)
		}
		mu.Unlock()
		if err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
