package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/tendant/voicehub/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// fetchPage runs the page query and the count query concurrently.
func fetchPage[T any](
	ctx context.Context,
	list func(ctx context.Context) ([]T, error),
	count func(ctx context.Context) (int, error),
) (domain.Page[T], error) {
	var (
		items []T
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = list(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Page[T]{}, err
	}

	if items == nil {
		items = []T{}
	}
	return domain.Page[T]{Items: items, Total: total}, nil
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// limitOffset appends LIMIT/OFFSET placeholders and returns the clause with
// the full argument list.
func (w *whereBuilder) limitOffset(p domain.PageRequest) (string, []any) {
	args := append(append([]any{}, w.args...), p.Limit(), p.Offset())
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere in the
// value. Use it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
