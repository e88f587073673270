// Package dispatch maps a rentalctl argument vector onto a single store
// operation and prints its result.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/rentalctl/rentalctl-go/internal/ctxlog"
	"github.com/rentalctl/rentalctl-go/internal/store"
)

// ErrUsage is returned by Parse when the arguments do not form a valid command.
var ErrUsage = errors.New("invalid usage")

// Usage is printed whenever the arguments do not parse.
const Usage = `Usage:
  insert <title> <year> <genre> <director> - Insert a movie
  show - Show all movies
  update <customer_id> <new_email> - Update a customer's email
  remove <customer_id> - Remove a customer from the database
`

var successColor = color.New(color.FgGreen, color.Bold)

// Verb names a command.
type Verb string

const (
	Insert Verb = "insert"
	Show   Verb = "show"
	Update Verb = "update"
	Remove Verb = "remove"
)

// argCounts is the number of arguments each verb takes after itself.
var argCounts = map[Verb]int{
	Insert: 4,
	Show:   0,
	Update: 2,
	Remove: 1,
}

// Command is a parsed invocation. Only the fields of its Verb are set.
type Command struct {
	Verb       Verb
	Movie      store.Movie
	CustomerID int64
	Email      string
}

// Parse turns an argument vector (without the program name) into a Command.
// Missing or unknown verbs, wrong argument counts and non-integer year or
// customer id all yield ErrUsage.
func Parse(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, fmt.Errorf("%w: no command given", ErrUsage)
	}

	verb := Verb(args[0])
	want, ok := argCounts[verb]
	if !ok {
		return Command{}, fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	rest := args[1:]
	if len(rest) != want {
		return Command{}, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrUsage, verb, want, len(rest))
	}

	cmd := Command{Verb: verb}
	switch verb {
	case Insert:
		year, err := strconv.Atoi(rest[1])
		if err != nil {
			return Command{}, fmt.Errorf("%w: year %q is not an integer", ErrUsage, rest[1])
		}
		cmd.Movie = store.Movie{Title: rest[0], ReleaseYear: year, Genre: rest[2], Director: rest[3]}
	case Update:
		id, err := parseID(rest[0])
		if err != nil {
			return Command{}, err
		}
		cmd.CustomerID = id
		cmd.Email = rest[1]
	case Remove:
		id, err := parseID(rest[0])
		if err != nil {
			return Command{}, err
		}
		cmd.CustomerID = id
	}
	return cmd, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: customer id %q is not an integer", ErrUsage, s)
	}
	return id, nil
}

// Store is the subset of *store.Store the dispatcher drives.
type Store interface {
	InsertMovie(ctx context.Context, m store.Movie) error
	ListMovies(ctx context.Context) ([]store.Movie, error)
	UpdateCustomerEmail(ctx context.Context, id int64, email string) (int64, error)
	DeleteCustomer(ctx context.Context, id int64) (int64, error)
}

// Dispatcher runs one command per call against a Store and writes the
// human-readable result to out.
type Dispatcher struct {
	store Store
	out   io.Writer
}

// New returns a Dispatcher.
func New(s Store, out io.Writer) *Dispatcher {
	return &Dispatcher{store: s, out: out}
}

// Run parses args and executes the command. A usage error prints Usage and
// returns nil without touching the store. Database errors are returned.
func (d *Dispatcher) Run(ctx context.Context, args []string) error {
	cmd, err := Parse(args)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("printing usage", "reason", err)
		_, werr := io.WriteString(d.out, Usage)
		return werr
	}
	return d.Execute(ctx, cmd)
}

// Execute runs an already parsed command.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) error {
	log := ctxlog.FromContext(ctx)

	switch cmd.Verb {
	case Insert:
		if err := d.store.InsertMovie(ctx, cmd.Movie); err != nil {
			return err
		}
		successColor.Fprintf(d.out, "Movie \"%s\" inserted successfully.\n", cmd.Movie.Title)

	case Show:
		movies, err := d.store.ListMovies(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(d.out, "Movies:")
		for _, m := range movies {
			fmt.Fprintln(d.out, m.String())
		}
		log.Debug("movies listed", "count", len(movies))

	case Update:
		n, err := d.store.UpdateCustomerEmail(ctx, cmd.CustomerID, cmd.Email)
		if err != nil {
			return err
		}
		log.Debug("customer email updated", "customer_id", cmd.CustomerID, "rows_affected", n)
		successColor.Fprintf(d.out, "Customer %d's email updated to %s.\n", cmd.CustomerID, cmd.Email)

	case Remove:
		n, err := d.store.DeleteCustomer(ctx, cmd.CustomerID)
		if err != nil {
			return err
		}
		log.Debug("customer removed", "customer_id", cmd.CustomerID, "rows_affected", n)
		successColor.Fprintf(d.out, "Customer %d and their rental history have been removed.\n", cmd.CustomerID)

	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd.Verb)
	}
	return nil
}
