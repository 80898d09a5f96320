package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"go-pianola/config"
	"go-pianola/debug"
	"go-pianola/keyboard"
	"go-pianola/script"
	"go-pianola/sequencer"
	"go-pianola/theme"
	"go-pianola/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: config: %v\n", err)
		os.Exit(1)
	}

	var (
		octaves    int
		large      bool
		signs      bool
		readOnly   bool
		scriptPath string
		palette    string
		delay      time.Duration
		debugLog   bool
		autoplay   bool
	)
	pflag.IntVarP(&octaves, "octaves", "o", cfg.Keyboard.Octaves, "number of octaves (1-9)")
	pflag.BoolVarP(&large, "large", "l", cfg.Keyboard.Large, "draw double-width keys")
	pflag.BoolVar(&signs, "signs", cfg.Keyboard.Signs, "print note names under the keys")
	pflag.BoolVar(&readOnly, "readonly", cfg.Keyboard.ReadOnly, "ignore qwerty and mouse input")
	pflag.StringVarP(&scriptPath, "script", "s", cfg.UI.LastScript, "JSON script to queue")
	pflag.StringVar(&palette, "palette", cfg.UI.Palette, "GIMP .gpl palette (built-in when empty)")
	pflag.DurationVarP(&delay, "delay", "d", cfg.Delay(), "default delay between frames")
	pflag.BoolVar(&debugLog, "debug", false, "write ~/.config/go-pianola/debug.log")
	pflag.BoolVarP(&autoplay, "play", "p", false, "start playing at once")
	pflag.Parse()

	if debugLog {
		if err := debug.Enable(); err != nil {
			fmt.Printf("Error: debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	// Load theme
	pal, err := theme.LoadOrDefault(palette)
	if err != nil {
		fmt.Printf("Error: palette: %v\n", err)
		os.Exit(1)
	}
	th := theme.New(pal)

	kb := keyboard.New(keyboard.Options{
		Octaves:  keyboard.ClampOctaves(octaves),
		Large:    large,
		Signs:    signs,
		ReadOnly: readOnly,
	})
	player := sequencer.New(kb)

	scriptPath = script.Resolve(scriptPath)
	if scriptPath != "" {
		s, err := script.Load(scriptPath)
		switch {
		case err != nil && !pflag.CommandLine.Changed("script"):
			// remembered script is gone; start empty
			debug.Log("config", "last script: %v", err)
			scriptPath = ""
		case err != nil:
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		default:
			if err := s.Apply(player, delay); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
		}
		if err == nil && pflag.CommandLine.Changed("script") {
			cfg.UI.LastScript = scriptPath
			if err := cfg.Save(); err != nil {
				debug.Log("config", "save: %v", err)
			}
		}
	}
	if autoplay {
		player.Play()
	}

	// Create and run TUI
	m := tui.NewModel(player, kb, th, scriptPath, delay)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
