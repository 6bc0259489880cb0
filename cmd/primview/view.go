package main

import (
	"fmt"
	"log/slog"

	"github.com/chazu/primmesh/pkg/config"
	"github.com/chazu/primmesh/pkg/gpu/glcore"
	"github.com/chazu/primmesh/pkg/scene"
	"github.com/chazu/primmesh/pkg/shader"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// view opens a window and draws sc until the window is closed.
func view(sc *scene.Scene, settings config.Settings, log *slog.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win := settings.Window
	window, err := glfw.CreateWindow(win.Width, win.Height, win.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()

	if win.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	dev, err := glcore.New()
	if err != nil {
		return err
	}
	if v, ok := dev.(interface{ Version() string }); ok {
		log.Info("opengl ready", "version", v.Version())
	}

	shaders := shader.NewRegistry(log)
	if err := shaders.BuildBasic(dev); err != nil {
		return err
	}
	defer shaders.Release(dev)

	if err := sc.Build(dev, shaders); err != nil {
		return err
	}
	defer sc.Release()

	if settings.Render.CheckSurfaces {
		if err := reportSurfaces(sc, settings.Render.Tolerance, log); err != nil {
			return err
		}
	}

	cam := newOrbitCamera(settings.Camera, sc.Bounds())
	log.Debug("camera", "target", cam.target, "distance", cam.offset.Len())

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape, glfw.KeyQ:
			w.SetShouldClose(true)
		case glfw.KeySpace:
			cam.paused = !cam.paused
		}
	})

	dev.EnableDepthTest()
	last := glfw.GetTime()
	for !window.ShouldClose() {
		now := glfw.GetTime()
		cam.advance(now - last)
		last = now

		fbw, fbh := window.GetFramebufferSize()
		dev.Viewport(int32(fbw), int32(fbh))
		dev.Clear(settings.Render.Background)

		sc.Draw(cam.projection(fbw, fbh), cam.view())

		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}
