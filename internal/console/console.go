package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/ferdiebergado/hbnb/internal/model"
)

const DefaultPrompt = "(hbnb) "

const (
	msgClassMissing   = "** class name missing **"
	msgClassUnknown   = "** class doesn't exist **"
	msgIDMissing      = "** instance id missing **"
	msgNoInstance     = "** no instance found **"
	msgAttrMissing    = "** attribute name missing **"
	msgValueMissing   = "** value missing **"
	msgAttrReadOnly   = "** attribute can't be updated **"
	msgUnknownSyntax  = "*** Unknown syntax: %s"
	msgStorageFailure = "** storage error: %v **"
)

// Store is the storage engine the console operates on.
type Store interface {
	model.Storage
	All(class string) []*model.Model
	Get(class, id string) (*model.Model, bool)
	Delete(class, id string) bool
	Count(class string) int
}

type Console struct {
	store  Store
	in     io.Reader
	out    io.Writer
	prompt string
}

type Option func(*Console)

// WithPrompt sets the prompt printed before each line. An empty prompt
// disables it, which suits non interactive input.
func WithPrompt(prompt string) Option {
	return func(c *Console) { c.prompt = prompt }
}

func New(store Store, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		store:  store,
		in:     in,
		out:    out,
		prompt: DefaultPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type handler func(c *Console, ctx context.Context, args []string) bool

var handlers map[string]handler

var helpTexts = map[string]string{
	"create":  "create <Class>: creates an instance, saves it and prints its id",
	"show":    "show <Class> <id>: prints an instance",
	"destroy": "destroy <Class> <id>: deletes an instance",
	"all":     "all [<Class>]: prints all instances, optionally of one class",
	"count":   "count <Class>: prints the number of instances of a class",
	"update":  "update <Class> <id> <attribute> \"<value>\": sets an attribute and saves",
	"help":    "help [<command>]: lists commands or describes one",
	"quit":    "quit: exits the console",
	"EOF":     "EOF: exits the console",
}

func init() {
	handlers = map[string]handler{
		"create":  (*Console).create,
		"show":    (*Console).show,
		"destroy": (*Console).destroy,
		"all":     (*Console).all,
		"count":   (*Console).count,
		"update":  (*Console).update,
		"help":    (*Console).help,
		"quit":    func(*Console, context.Context, []string) bool { return true },
		"EOF":     (*Console).eof,
	}
}

// Run reads commands until quit, end of input or cancellation of ctx.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		c.printPrompt()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read command: %w", err)
					}
				default:
				}
				c.Execute(ctx, "EOF")
				return nil
			}
			if c.Execute(ctx, line) {
				return nil
			}
		}
	}
}

// Execute runs a single command line and reports whether the console
// should stop.
func (c *Console) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if cl, ok := parseCall(line); ok {
		return c.executeCall(ctx, line, cl)
	}

	args, err := splitArgs(line)
	if err != nil || len(args) == 0 {
		c.println(fmt.Sprintf(msgUnknownSyntax, line))
		return false
	}

	h, ok := handlers[args[0]]
	if !ok {
		c.println(fmt.Sprintf(msgUnknownSyntax, line))
		return false
	}

	slog.Debug("Executing command.", "command", args[0], "args", args[1:])
	return h(c, ctx, args[1:])
}

func (c *Console) executeCall(ctx context.Context, line string, cl call) bool {
	switch cl.method {
	case "all", "count", "show", "destroy":
		return handlers[cl.method](c, ctx, append([]string{cl.class}, cl.args...))
	case "update":
		if cl.dict != "" {
			c.updateDict(ctx, cl.class, cl.args, cl.dict)
			return false
		}
		return c.update(ctx, append([]string{cl.class}, cl.args...))
	}

	c.println(fmt.Sprintf(msgUnknownSyntax, line))
	return false
}

func (c *Console) create(ctx context.Context, args []string) bool {
	class, ok := c.class(args)
	if !ok {
		return false
	}

	m, err := model.NewOf(class, model.WithStorage(c.store))
	if err != nil {
		c.println(msgClassUnknown)
		return false
	}

	if c.save(ctx, m) {
		c.println(m.ID)
	}
	return false
}

func (c *Console) show(_ context.Context, args []string) bool {
	if m, ok := c.instance(args); ok {
		c.println(m.String())
	}
	return false
}

func (c *Console) destroy(ctx context.Context, args []string) bool {
	m, ok := c.instance(args)
	if !ok {
		return false
	}

	c.store.Delete(m.Class(), m.ID)
	if err := c.store.Persist(ctx); err != nil {
		// Keep the registry in line with what was last written.
		c.store.Register(m)
		c.storageFailure(err)
	}
	return false
}

func (c *Console) all(_ context.Context, args []string) bool {
	class := ""
	if len(args) > 0 {
		var ok bool
		if class, ok = c.class(args); !ok {
			return false
		}
	}

	models := c.store.All(class)
	items := make([]string, 0, len(models))
	for _, m := range models {
		items = append(items, fmt.Sprintf("%q", m.String()))
	}
	c.println("[" + strings.Join(items, ", ") + "]")
	return false
}

func (c *Console) count(_ context.Context, args []string) bool {
	if class, ok := c.class(args); ok {
		c.println(fmt.Sprint(c.store.Count(class)))
	}
	return false
}

func (c *Console) update(ctx context.Context, args []string) bool {
	m, ok := c.instance(args)
	if !ok {
		return false
	}

	if len(args) < 3 {
		c.println(msgAttrMissing)
		return false
	}
	if len(args) < 4 {
		c.println(msgValueMissing)
		return false
	}

	attr, raw := args[2], args[3]
	class, _ := model.LookupClass(m.Class())
	if err := m.Set(attr, class.Coerce(attr, raw)); err != nil {
		c.println(msgAttrReadOnly)
		return false
	}

	c.save(ctx, m)
	return false
}

func (c *Console) updateDict(ctx context.Context, className string, args []string, dict string) {
	m, ok := c.instance(append([]string{className}, args...))
	if !ok {
		return
	}

	dec := json.NewDecoder(strings.NewReader(dict))
	dec.UseNumber()

	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		c.println(msgValueMissing)
		return
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := m.Set(k, attrs[k]); errors.Is(err, model.ErrReservedAttribute) {
			slog.Debug("Skipping reserved attribute.", "attribute", k)
		}
	}

	c.save(ctx, m)
}

func (c *Console) help(_ context.Context, args []string) bool {
	if len(args) > 0 {
		if text, ok := helpTexts[args[0]]; ok {
			c.println(text)
		} else {
			c.println(fmt.Sprintf("*** No help on %s", args[0]))
		}
		return false
	}

	names := make([]string, 0, len(helpTexts))
	for name := range helpTexts {
		names = append(names, name)
	}
	sort.Strings(names)

	c.println("Documented commands (type help <topic>):")
	c.println(strings.Join(names, "  "))
	c.println("Classes: " + strings.Join(model.ClassNames(), ", "))
	return false
}

func (c *Console) eof(context.Context, []string) bool {
	if c.prompt != "" {
		c.println("")
	}
	return true
}

// class validates the class name in args[0].
func (c *Console) class(args []string) (string, bool) {
	if len(args) == 0 || args[0] == "" {
		c.println(msgClassMissing)
		return "", false
	}
	if _, ok := model.LookupClass(args[0]); !ok {
		c.println(msgClassUnknown)
		return "", false
	}
	return args[0], true
}

// instance resolves the instance named by args[0] and args[1].
func (c *Console) instance(args []string) (*model.Model, bool) {
	class, ok := c.class(args)
	if !ok {
		return nil, false
	}
	if len(args) < 2 || args[1] == "" {
		c.println(msgIDMissing)
		return nil, false
	}

	m, ok := c.store.Get(class, args[1])
	if !ok {
		c.println(msgNoInstance)
		return nil, false
	}
	return m, true
}

func (c *Console) save(ctx context.Context, m *model.Model) bool {
	if err := m.Save(ctx); err != nil {
		c.storageFailure(err)
		return false
	}
	return true
}

func (c *Console) storageFailure(err error) {
	slog.Error("Storage operation failed.", "reason", err)
	c.println(fmt.Sprintf(msgStorageFailure, err))
}

func (c *Console) printPrompt() {
	if c.prompt != "" {
		fmt.Fprint(c.out, c.prompt)
	}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}
