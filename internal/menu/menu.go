// Package menu implements the interactive line-oriented text interface.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/starford/recvault/internal/apperr"
	"github.com/starford/recvault/internal/models"
	"github.com/starford/recvault/internal/vault"
)

const banner = `
===== recvault =====
1. Add Record
2. List Records
3. Update Record
4. Delete Record
5. Search Record
6. Sort Records
7. Export Data
8. Get Stats
9. Exit
====================
`

// errExit ends the loop.
var errExit = errors.New("menu: exit")

type session struct {
	svc *vault.Service
	in  *bufio.Scanner
	out io.Writer
}

// Run shows the menu on out and executes commands read line by line from
// in until the user exits, in reaches EOF, or ctx is cancelled. Command
// failures are printed and never end the loop.
func Run(ctx context.Context, svc *vault.Service, in io.Reader, out io.Writer) error {
	s := &session{svc: svc, in: bufio.NewScanner(in), out: out}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(s.out, banner)
		choice, ok := s.ask("Choose option: ")
		if !ok {
			return s.in.Err()
		}
		err := s.dispatch(ctx, choice)
		if errors.Is(err, errExit) {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return s.in.Err()
		}
	}
}

// ask prints prompt and returns the next trimmed line; false on EOF.
func (s *session) ask(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *session) askAll(prompts ...string) ([]string, error) {
	answers := make([]string, 0, len(prompts))
	for _, p := range prompts {
		a, ok := s.ask(p)
		if !ok {
			return nil, io.EOF
		}
		answers = append(answers, a)
	}
	return answers, nil
}

func (s *session) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case "1":
		return s.add(ctx)
	case "2":
		return s.list(ctx)
	case "3":
		return s.update(ctx)
	case "4":
		return s.remove(ctx)
	case "5":
		return s.search(ctx)
	case "6":
		return s.sort(ctx)
	case "7":
		return s.export(ctx)
	case "8":
		return s.stats(ctx)
	case "9":
		fmt.Fprintln(s.out, "👋 Exiting recvault...")
		return errExit
	default:
		fmt.Fprintln(s.out, "Invalid option.")
		return nil
	}
}

func (s *session) fail(err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		fmt.Fprintln(s.out, "❌ Record not found.")
	default:
		fmt.Fprintf(s.out, "❌ %v\n", err)
	}
}

func (s *session) add(ctx context.Context) error {
	a, err := s.askAll("Enter name: ", "Enter value: ")
	if err != nil {
		return err
	}
	if _, err := s.svc.Add(ctx, models.Input{Name: a[0], Value: a[1]}); err != nil {
		s.fail(err)
		return nil
	}
	fmt.Fprintln(s.out, "✅ Record added successfully!")
	return nil
}

func (s *session) list(ctx context.Context) error {
	records, err := s.svc.List(ctx)
	if err != nil {
		s.fail(err)
		return nil
	}
	if len(records) == 0 {
		fmt.Fprintln(s.out, "No records found.")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(s.out, "ID: %s | Name: %s | Value: %s\n", r.ID, r.Name, r.Value)
	}
	return nil
}

func (s *session) update(ctx context.Context) error {
	a, err := s.askAll("Enter record ID to update: ", "New name: ", "New value: ")
	if err != nil {
		return err
	}
	if _, err := s.svc.Update(ctx, models.ParseID(a[0]), models.Input{Name: a[1], Value: a[2]}); err != nil {
		s.fail(err)
		return nil
	}
	fmt.Fprintln(s.out, "✅ Record updated!")
	return nil
}

func (s *session) remove(ctx context.Context) error {
	id, ok := s.ask("Enter record ID to delete: ")
	if !ok {
		return io.EOF
	}
	if _, err := s.svc.Delete(ctx, models.ParseID(id)); err != nil {
		s.fail(err)
		return nil
	}
	fmt.Fprintln(s.out, "🗑️ Record deleted!")
	return nil
}

func (s *session) printNumbered(records []models.Record) {
	for i, r := range records {
		fmt.Fprintf(s.out, "%d. ID: %s | Name: %s | Value: %s\n", i+1, r.ID, r.Name, r.Value)
	}
}

func (s *session) search(ctx context.Context) error {
	term, ok := s.ask("Enter search keyword: ")
	if !ok {
		return io.EOF
	}
	results, err := s.svc.Search(ctx, term)
	if err != nil {
		s.fail(err)
		return nil
	}
	if len(results) == 0 {
		fmt.Fprintln(s.out, "No records found.")
		return nil
	}
	fmt.Fprintf(s.out, "Found %d matching records:\n", len(results))
	s.printNumbered(results)
	return nil
}

func (s *session) sort(ctx context.Context) error {
	field, ok := s.ask("Choose field to sort by (name/id): ")
	if !ok {
		return io.EOF
	}
	if f := vault.SortField(field); f != vault.SortByName && f != vault.SortByID {
		fmt.Fprintln(s.out, `Invalid field. Use "name" or "id".`)
		return nil
	}
	order, ok := s.ask("Choose order (asc/desc): ")
	if !ok {
		return io.EOF
	}
	if o := vault.SortOrder(order); o != vault.Asc && o != vault.Desc {
		fmt.Fprintln(s.out, `Invalid order. Use "asc" or "desc".`)
		return nil
	}

	sorted, err := s.svc.Sort(ctx, vault.SortField(field), vault.SortOrder(order))
	if err != nil {
		s.fail(err)
		return nil
	}
	fmt.Fprintln(s.out, "Sorted Records:")
	s.printNumbered(sorted)
	return nil
}

func (s *session) export(ctx context.Context) error {
	path, err := s.svc.Export(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "❌ Export failed: %v\n", err)
		return nil
	}
	fmt.Fprintf(s.out, "✅ Data exported successfully to %s\n", path)
	return nil
}

func (s *session) stats(ctx context.Context) error {
	st, err := s.svc.Stats(ctx)
	if err != nil {
		s.fail(err)
		return nil
	}
	if st.IsEmpty() {
		fmt.Fprintln(s.out, st.Message)
		return nil
	}
	fmt.Fprintf(s.out, `
Vault Statistics:
---
Total Records: %d
Last Modified: %s
Longest Name: %s
Earliest Record: %s
Latest Record: %s
`, st.TotalRecords, st.LastModified, st.LongestName, st.EarliestRecord, st.LatestRecord)
	return nil
}
