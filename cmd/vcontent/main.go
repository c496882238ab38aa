package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/vcontent"
	"github.com/xqrs/vcontent/help"
	"github.com/xqrs/vcontent/keybind"
	"github.com/xqrs/vcontent/virtual"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		flagConfig string
		flagQuery  string
		flagItems  int
		flagLog    string
		flagStatus bool
		flagSeed   uint64
		flagBorder string
		flagVi     bool
	)
	flag.StringVar(&flagConfig, "config", "", "YAML config file")
	flag.StringVar(&flagQuery, "query", "", "settings as a query string, e.g. debug=1&useLocking=0")
	flag.IntVar(&flagItems, "items", 10000, "number of paragraphs")
	flag.StringVar(&flagLog, "log", "", "write logs to this file")
	flag.BoolVar(&flagStatus, "status", true, "show the engine status in the title")
	flag.Uint64Var(&flagSeed, "seed", 1, "seed for the generated paragraphs")
	flag.StringVar(&flagBorder, "border", "round", "border style: "+strings.Join(vcontent.BorderSetNames, ", "))
	flag.BoolVar(&flagVi, "vi", true, "bind vi letter keys for scrolling")
	flag.Parse()

	cfg := vcontent.DefaultContentConfig()
	if flagConfig != "" {
		loaded, err := virtual.LoadConfig(flagConfig)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		cfg = loaded
	}
	if flagQuery != "" {
		if err := cfg.ParseQuery(flagQuery); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	borderSet, ok := vcontent.BorderSetByName(flagBorder)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown border style %q\n", flagBorder)
		return 2
	}
	keybinds := vcontent.DefaultKeybinds()
	if !flagVi {
		keybinds = vcontent.ArrowKeybinds()
	}

	logger, closeLog, err := newLogger(flagLog, cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer closeLog()

	app := vcontent.NewApplication().SetLogger(logger)
	content, err := vcontent.NewVirtualContent(app,
		vcontent.WithConfig(cfg),
		vcontent.WithLogger(logger),
		vcontent.WithKeybinds(keybinds),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	content.SetBorders(vcontent.BordersAll)
	content.SetBorderSet(borderSet)

	rng := rand.New(rand.NewPCG(flagSeed, flagSeed))
	for i := range flagItems {
		content.AppendChild(vcontent.NewItem(vcontent.NewTextItem(paragraph(rng, i))))
	}

	v := newViewer(content, flagStatus)
	logger.Info("demo: starting", "items", flagItems, "locking", cfg.UseLocking, "intersection", cfg.UseIntersection)
	if err := app.SetRoot(v).Run(); err != nil {
		logger.Error("demo: run failed", "err", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger.Info("demo: stopped", "frames", app.Frames(), "ticks", content.Manager().Stats().Ticks)
	return 0
}

func newLogger(path string, debug bool) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), func() { f.Close() }, nil
}

var words = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod
tempor incididunt ut labore et dolore magna aliqua enim ad minim veniam quis nostrud exercitation
ullamco laboris nisi aliquip ex ea commodo consequat`)

func paragraph(rng *rand.Rand, index int) string {
	n := 4 + rng.IntN(60)
	var b strings.Builder
	fmt.Fprintf(&b, "#%d", index)
	for range n {
		b.WriteByte(' ')
		b.WriteString(words[rng.IntN(len(words))])
	}
	return b.String()
}

// viewer adds the application keys and a help footer to the content.
type viewer struct {
	*vcontent.VirtualContent
	help *help.Help

	quit     keybind.Keybind
	status   keybind.Keybind
	sync     keybind.Keybind
	showHelp keybind.Keybind
	shown    bool
}

func newViewer(c *vcontent.VirtualContent, showStatus bool) *viewer {
	v := &viewer{
		VirtualContent: c,
		help:           help.New(),
		quit:           keybind.NewKeybind(keybind.WithKeys("q", "ctrl+c"), keybind.WithHelp("q", "quit")),
		status:         keybind.NewKeybind(keybind.WithKeys("s"), keybind.WithHelp("s", "status")),
		sync:           keybind.NewKeybind(keybind.WithKeys("ctrl+l"), keybind.WithHelp("ctrl+l", "sync")),
		showHelp:       keybind.NewKeybind(keybind.WithKeys("?"), keybind.WithHelp("?", "more")),
	}
	v.help.SetKeyMap(v)
	c.SetTitleAlignment(vcontent.AlignmentLeft)
	v.showStatus(showStatus)
	return v
}

func (v *viewer) showStatus(show bool) {
	v.shown = show
	v.SetShowStatus(show)
	if !show {
		v.SetTitle("")
	}
}

// ShortHelp implements help.KeyMap.
func (v *viewer) ShortHelp() []keybind.Keybind {
	return append(v.Keybinds().ShortHelp(), v.showHelp, v.quit)
}

// FullHelp implements help.KeyMap.
func (v *viewer) FullHelp() [][]keybind.Keybind {
	return append(v.Keybinds().FullHelp(), []keybind.Keybind{v.status, v.sync, v.showHelp, v.quit})
}

func (v *viewer) SetRect(x, y, width, height int) {
	rows := min(v.help.Height(width), height)
	v.VirtualContent.SetRect(x, y, width, height-rows)
	v.help.SetRect(x, y+height-rows, width, rows)
}

func (v *viewer) Draw(screen tcell.Screen) {
	v.VirtualContent.Draw(screen)
	v.help.Draw(screen)
}

func (v *viewer) InputHandler(event *tcell.EventKey) vcontent.Command {
	switch {
	case keybind.Matches(event, v.quit):
		return vcontent.QuitCommand{}
	case keybind.Matches(event, v.status):
		v.showStatus(!v.shown)
		return vcontent.RedrawCommand{}
	case keybind.Matches(event, v.showHelp):
		v.help.SetShowAll(!v.help.ShowAll())
		return vcontent.RedrawCommand{}
	case keybind.Matches(event, v.sync):
		v.Sync()
		return vcontent.AppendCommand(vcontent.SyncCommand{}, vcontent.RedrawCommand{})
	}
	return v.VirtualContent.InputHandler(event)
}
