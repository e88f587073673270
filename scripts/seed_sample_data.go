package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rentalctl/rentalctl-go/internal/config"
	"github.com/rentalctl/rentalctl-go/internal/ctxlog"
	"github.com/rentalctl/rentalctl-go/internal/database"
	"github.com/rentalctl/rentalctl-go/internal/store"
)

var sampleMovies = []store.Movie{
	{Title: "Inception", ReleaseYear: 2010, Genre: "Sci-Fi", Director: "Christopher Nolan"},
	{Title: "Heat", ReleaseYear: 1995, Genre: "Crime", Director: "Michael Mann"},
	{Title: "Spirited Away", ReleaseYear: 2001, Genre: "Animation", Director: "Hayao Miyazaki"},
	{Title: "Alien", ReleaseYear: 1979, Genre: "Horror", Director: "Ridley Scott"},
	{Title: "Amelie", ReleaseYear: 2001, Genre: "Comedy", Director: "Jean-Pierre Jeunet"},
}

var firstNames = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi"}
var lastNames = []string{"Smith", "Jones", "Brown", "Garcia", "Miller", "Davis"}

type options struct {
	envFile   string
	driver    string
	dbPath    string
	customers int
	rentals   int
	seed      int64
	verbose   bool
}

// summary counts what a seeding run inserted.
type summary struct {
	movies    int
	customers int
	rentals   int
}

func main() {
	var opts options
	flag.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "dotenv file to load")
	flag.StringVar(&opts.driver, "driver", "", "Database driver override: 'postgres', 'mysql', or 'sqlite'")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite database path (required for sqlite)")
	flag.IntVar(&opts.customers, "customers", 5, "Number of customers to create")
	flag.IntVar(&opts.rentals, "rentals", 2, "Rentals per customer")
	flag.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "Random seed")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.Parse()

	ctx := ctxlog.WithLogger(context.Background(), ctxlog.New(os.Stderr, opts.verbose))

	sum, err := run(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Seeded %d movies, %d customers and %d rentals\n", sum.movies, sum.customers, sum.rentals)
}

func run(ctx context.Context, opts options) (summary, error) {
	var sum summary
	rng := rand.New(rand.NewSource(opts.seed))

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return sum, fmt.Errorf("loading config: %w", err)
	}
	if opts.driver != "" {
		if cfg.Driver, err = config.ParseDriver(opts.driver); err != nil {
			return sum, err
		}
	}
	if cfg.Driver == config.SQLite {
		if opts.dbPath == "" {
			return sum, fmt.Errorf("-db is required for sqlite, a temporary database would be discarded")
		}
		cfg.Path = opts.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return sum, err
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return sum, err
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return sum, fmt.Errorf("provisioning schema: %w", err)
	}

	s := store.New(db)

	for _, m := range sampleMovies {
		if err := s.InsertMovie(ctx, m); err != nil {
			return sum, err
		}
		sum.movies++
	}
	movies, err := s.ListMovies(ctx)
	if err != nil {
		return sum, err
	}

	// Emails carry the seed so repeated runs do not collide on the unique index.
	start := time.Now().AddDate(0, -1, 0)
	for i := 0; i < opts.customers; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		c := store.Customer{
			FirstName:   first,
			LastName:    last,
			Email:       fmt.Sprintf("%s.%s.%d.%d@example.com", first, last, opts.seed%100000, i),
			PhoneNumber: fmt.Sprintf("555-%04d", rng.Intn(10000)),
		}
		if err := s.InsertCustomer(ctx, c); err != nil {
			return sum, err
		}
		sum.customers++

		id, err := customerIDByEmail(ctx, db, c.Email)
		if err != nil {
			return sum, fmt.Errorf("looking up customer %s: %w", c.Email, err)
		}

		for j := 0; j < opts.rentals; j++ {
			out := start.AddDate(0, 0, rng.Intn(28))
			r := store.Rental{
				CustomerID: id,
				MovieID:    movies[rng.Intn(len(movies))].ID,
				RentalDate: out,
			}
			if rng.Intn(2) == 0 {
				back := out.AddDate(0, 0, 1+rng.Intn(5))
				r.ReturnDate = &back
			}
			if err := s.InsertRental(ctx, r); err != nil {
				return sum, err
			}
			sum.rentals++
		}
	}

	return sum, nil
}

func customerIDByEmail(ctx context.Context, db *database.DB, email string) (int64, error) {
	var id int64
	query := db.Dialect.Rebind("SELECT customer_id FROM customers WHERE email = ?")
	err := db.QueryRowContext(ctx, query, email).Scan(&id)
	return id, err
}
