// Package store issues the parameterized statements rentalctl runs against
// the movies, customers and rentals tables.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rentalctl/rentalctl-go/internal/database"
)

// Movie is a row of the movies table.
type Movie struct {
	ID          int64
	Title       string
	ReleaseYear int
	Genre       string
	Director    string
}

// String renders the movie the way the show command prints it.
func (m Movie) String() string {
	return fmt.Sprintf("%d. %s (%d) - %s, Directed by %s", m.ID, m.Title, m.ReleaseYear, m.Genre, m.Director)
}

// Customer is a row of the customers table.
type Customer struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

// Rental is a row of the rentals table. ReturnDate is nil while the movie is out.
type Rental struct {
	ID         int64
	CustomerID int64
	MovieID    int64
	RentalDate time.Time
	ReturnDate *time.Time
}

const dateLayout = "2006-01-02"

// Store runs statements over a connection pool. It holds no state of its own.
type Store struct {
	db *database.DB
}

// New returns a Store bound to db.
func New(db *database.DB) *Store {
	return &Store{db: db}
}

func (s *Store) q(query string) string {
	return s.db.Dialect.Rebind(query)
}

// InsertMovie adds a movie row.
func (s *Store) InsertMovie(ctx context.Context, m Movie) error {
	const query = "INSERT INTO movies (title, release_year, genre, director) VALUES (?, ?, ?, ?)"
	if _, err := s.db.ExecContext(ctx, s.q(query), m.Title, m.ReleaseYear, m.Genre, m.Director); err != nil {
		return fmt.Errorf("failed to insert movie %q: %w", m.Title, err)
	}
	return nil
}

// ListMovies returns every movie ordered by id.
func (s *Store) ListMovies(ctx context.Context) ([]Movie, error) {
	const query = "SELECT movie_id, title, release_year, genre, director FROM movies ORDER BY movie_id"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []Movie
	for rows.Next() {
		var m Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.ReleaseYear, &m.Genre, &m.Director); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}
	return movies, nil
}

// UpdateCustomerEmail sets the email of the customer with the given id and
// returns the number of rows changed. Zero is not an error.
func (s *Store) UpdateCustomerEmail(ctx context.Context, id int64, email string) (int64, error) {
	const query = "UPDATE customers SET email = ? WHERE customer_id = ?"
	res, err := s.db.ExecContext(ctx, s.q(query), email, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update email of customer %d: %w", id, err)
	}
	return rowsAffected(res)
}

// DeleteCustomer removes the customer with the given id; the rentals foreign
// key cascades to their rental history. Zero rows affected is not an error.
func (s *Store) DeleteCustomer(ctx context.Context, id int64) (int64, error) {
	const query = "DELETE FROM customers WHERE customer_id = ?"
	res, err := s.db.ExecContext(ctx, s.q(query), id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete customer %d: %w", id, err)
	}
	return rowsAffected(res)
}

// InsertCustomer adds a customer row. A duplicate email fails on the
// table's unique constraint.
func (s *Store) InsertCustomer(ctx context.Context, c Customer) error {
	const query = "INSERT INTO customers (first_name, last_name, email, phone_number) VALUES (?, ?, ?, ?)"
	if _, err := s.db.ExecContext(ctx, s.q(query), c.FirstName, c.LastName, c.Email, c.PhoneNumber); err != nil {
		return fmt.Errorf("failed to insert customer %s: %w", c.Email, err)
	}
	return nil
}

// GetCustomer looks a customer up by id. It returns sql.ErrNoRows, wrapped,
// when there is none.
func (s *Store) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	const query = "SELECT customer_id, first_name, last_name, email, phone_number FROM customers WHERE customer_id = ?"
	var c Customer
	err := s.db.QueryRowContext(ctx, s.q(query), id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	return &c, nil
}

// InsertRental records a rental. Dates are stored as YYYY-MM-DD.
func (s *Store) InsertRental(ctx context.Context, r Rental) error {
	const query = "INSERT INTO rentals (customer_id, movie_id, rental_date, return_date) VALUES (?, ?, ?, ?)"
	var returned any
	if r.ReturnDate != nil {
		returned = r.ReturnDate.Format(dateLayout)
	}
	_, err := s.db.ExecContext(ctx, s.q(query), r.CustomerID, r.MovieID, r.RentalDate.Format(dateLayout), returned)
	if err != nil {
		return fmt.Errorf("failed to insert rental for customer %d: %w", r.CustomerID, err)
	}
	return nil
}

// CountRentalsByCustomer returns how many rentals reference the customer.
func (s *Store) CountRentalsByCustomer(ctx context.Context, customerID int64) (int, error) {
	const query = "SELECT COUNT(*) FROM rentals WHERE customer_id = ?"
	var n int
	if err := s.db.QueryRowContext(ctx, s.q(query), customerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rentals of customer %d: %w", customerID, err)
	}
	return n, nil
}

type resultRows interface {
	RowsAffected() (int64, error)
}

func rowsAffected(res resultRows) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}
