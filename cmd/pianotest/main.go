package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-pianola/debug"
	"go-pianola/keyboard"
	"go-pianola/midi"
	"go-pianola/script"
	"go-pianola/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "keys":
		err = listKeys(os.Args[2:])
	case "resolve":
		err = resolveNames(os.Args[2:])
	case "play":
		err = playScript(os.Args[2:])
	case "feed":
		err = feedMessages(os.Args[2:])
	case "scripts":
		err = listScripts()
	case "import":
		err = importScripts(os.Args[2:])
	case "check":
		err = checkScripts(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Pianola Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  keys                 - List the keyboard layout")
	fmt.Println("  resolve NAME...      - Resolve note names the way a frame would")
	fmt.Println("  play [SCRIPT]        - Play a script headless, printing MIDI messages")
	fmt.Println("  feed HEX...          - Feed raw MIDI messages (e.g. 903c64) to the keyboard")
	fmt.Println("  scripts              - List saved scripts")
	fmt.Println("  import FILE...       - Copy script files into the library")
	fmt.Println("  check FILE...        - Validate scripts and print their length")
	fmt.Println("")
	fmt.Println("Flags: --octaves N (all), --delay D --max D --debug (play)")
}

func newFlags(name string) (*pflag.FlagSet, *int) {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	octaves := fs.IntP("octaves", "o", keyboard.MaxOctaves, "number of octaves (1-9)")
	return fs, octaves
}

func newKeyboard(octaves int) *keyboard.Keyboard {
	return keyboard.New(keyboard.Options{Octaves: keyboard.ClampOctaves(octaves), ReadOnly: true})
}

func listKeys(args []string) error {
	fs, octaves := newFlags("keys")
	fs.Parse(args)

	kb := newKeyboard(*octaves)
	fmt.Printf("=== %d keys, scan offset %d ===\n", kb.Len(), kb.Offset())
	for _, k := range kb.Keys() {
		color := "white"
		if k.Black {
			color = "black"
		}
		fmt.Printf("  %3d  note %3d  %-5s %s  %s\n", k.Index, k.Note, k.Name(), color, strings.Join(k.Labels(), " "))
	}
	return nil
}

func resolveNames(args []string) error {
	fs, octaves := newFlags("resolve")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("resolve: no names given")
	}

	kb := newKeyboard(*octaves)
	player := sequencer.New(kb)
	taken, err := player.Take(fs.Args())
	for _, i := range taken {
		k := kb.KeyAt(i)
		fmt.Printf("  %3d  %-5s note %d\n", i, k.Name(), k.Note)
	}
	var nerr *sequencer.NoteError
	if errors.As(err, &nerr) {
		fmt.Printf("Unresolved: %v\n", err)
		return nil
	}
	return err
}

func playScript(args []string) error {
	fs, octaves := newFlags("play")
	delay := fs.DurationP("delay", "d", sequencer.DefaultDelay, "default delay between frames")
	limit := fs.Duration("max", time.Minute, "stop after this long")
	debugLog := fs.Bool("debug", false, "write ~/.config/go-pianola/debug.log")
	fs.Parse(args)
	if fs.NArg() > 1 {
		return errors.New("play: want at most one script")
	}
	path, err := choosePath(fs.Args())
	if err != nil {
		return err
	}

	if *debugLog {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}

	s, err := script.Load(path)
	if err != nil {
		return err
	}

	kb := newKeyboard(*octaves)
	player := sequencer.New(kb)
	if err := s.Apply(player, *delay); err != nil {
		return err
	}

	total := "forever"
	if d, ok := player.Duration(); ok {
		total = durafmt.Parse(d).LimitFirstN(2).String()
	}
	fmt.Printf("Playing %s: %d groups, %s\n", path, len(s.Groups), total)

	start := time.Now()
	rec := midi.NewRecorder(0)
	kb.Listen(rec.Record)
	kb.Listen(func(kev keyboard.Event) {
		ev := midi.FromKeyboard(kev)
		ev.At = time.Since(start)
		fmt.Printf("%s  %s\n", ev, kev.Key.Name())
	})

	player.Play()
	timeout := time.After(*limit)
	for player.State().Playing {
		select {
		case <-player.UpdateChan:
		case <-timeout:
			fmt.Println("Time limit reached")
			player.Stop()
		}
	}
	player.Dump("end of play")
	player.Stop()
	fmt.Printf("Done after %s, %d notes played\n", durafmt.Parse(time.Since(start)).LimitFirstN(2), len(rec.Notes()))
	return nil
}

func feedMessages(args []string) error {
	fs, octaves := newFlags("feed")
	fs.Parse(args)

	kb := keyboard.New(keyboard.Options{Octaves: keyboard.ClampOctaves(*octaves)})
	in := midi.NewInput(sequencer.New(kb), kb)
	for _, arg := range fs.Args() {
		raw, err := hex.DecodeString(arg)
		if err != nil {
			return fmt.Errorf("feed %q: %w", arg, err)
		}
		played := in.Feed(gomidi.Message(raw))
		var names []string
		for _, i := range kb.Active() {
			names = append(names, kb.KeyAt(i).Name())
		}
		fmt.Printf("  %-8s played=%-5v active=[%s]\n", arg, played, strings.Join(names, " "))
	}
	return nil
}

func listScripts() error {
	lib, err := script.DefaultLibrary()
	if err != nil {
		return err
	}
	infos, err := lib.List()
	if err != nil {
		return err
	}
	fmt.Printf("=== %s ===\n", lib.Dir)
	for _, info := range infos {
		fmt.Printf("  %-24s %s\n", info.Name, info.Modified.Format("2006-01-02 15:04"))
	}
	return nil
}

func importScripts(args []string) error {
	lib, err := script.DefaultLibrary()
	if err != nil {
		return err
	}
	for _, path := range args {
		s, err := script.Load(path)
		if err != nil {
			return err
		}
		if s.Name == "" {
			s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		saved, err := lib.Save(s)
		if err != nil {
			return err
		}
		fmt.Printf("  %s -> %s\n", path, saved)
	}
	return nil
}

// choosePath uses the argument when given (a file or a library name),
// otherwise asks with a file dialog
func choosePath(args []string) (string, error) {
	if len(args) > 0 {
		return script.Resolve(args[0]), nil
	}

	start, _ := os.Getwd()
	if lib, err := script.DefaultLibrary(); err == nil {
		if _, err := os.Stat(lib.Dir); err == nil {
			start = lib.Dir
		}
	}
	path, err := dialog.
		File().
		Title("Open pianola script").
		Filter("Pianola scripts (*.json)", "json").
		SetStartDir(start).
		Load()
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			return "", errors.New("play: no script chosen")
		}
		return "", err
	}
	return path, nil
}

type checkResult struct {
	path   string
	groups int
	length string
	err    error
}

func checkScripts(args []string) error {
	fs, octaves := newFlags("check")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("check: no scripts given")
	}

	results := make([]checkResult, fs.NArg())
	wg := sizedwaitgroup.New(runtime.NumCPU())
	for i, path := range fs.Args() {
		wg.Add()
		go func(i int, path string) {
			defer wg.Done()
			results[i] = checkScript(path, *octaves)
		}(i, script.Resolve(path))
	}
	wg.Wait()

	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Printf("  FAIL  %s: %v\n", res.path, res.err)
			continue
		}
		fmt.Printf("  ok    %s: %d groups, %s\n", res.path, res.groups, res.length)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scripts failed", failed, len(results))
	}
	return nil
}

// checkScript applies a script to a scratch player without playing it
func checkScript(path string, octaves int) checkResult {
	res := checkResult{path: path}
	s, err := script.Load(path)
	if err != nil {
		res.err = err
		return res
	}
	player := sequencer.New(newKeyboard(octaves))
	if err := s.Apply(player, 0); err != nil {
		res.err = err
		return res
	}
	res.groups = player.State().Groups
	res.length = "forever"
	if d, ok := player.Duration(); ok {
		res.length = durafmt.Parse(d).LimitFirstN(2).String()
	}
	return res
}
