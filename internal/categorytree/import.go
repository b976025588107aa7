package categorytree

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/Veraticus/bookkeeper/internal/service"
	"github.com/Veraticus/bookkeeper/internal/storage"
)

// Import adds every pair to repo in order and returns the resulting
// categories. Parent names resolve to categories created earlier in the same
// import, then to categories already stored. A name that already exists is
// reused rather than inserted twice. progress, when not nil, is called once
// per pair.
func Import(ctx context.Context, repo service.Repository[model.Category], pairs []Pair, progress func()) ([]model.Category, error) {
	byName := make(map[string]model.Category, len(pairs))
	result := make([]model.Category, 0, len(pairs))

	for _, pair := range pairs {
		var parent *int64
		if pair.HasParent {
			p, err := resolve(ctx, repo, byName, pair.Parent)
			if err != nil {
				return result, fmt.Errorf("parent of %q: %w", pair.Name, err)
			}
			parent = model.Ref(p.PK)
		}

		cat, err := addOrReuse(ctx, repo, model.NewCategory(pair.Name, parent))
		if err != nil {
			return result, err
		}

		byName[cat.Name] = cat
		result = append(result, cat)
		if progress != nil {
			progress()
		}
	}

	slog.Info("imported category tree", "count", len(result))
	return result, nil
}

func resolve(ctx context.Context, repo service.Repository[model.Category], byName map[string]model.Category, name string) (model.Category, error) {
	if cat, ok := byName[name]; ok {
		return cat, nil
	}

	found, err := repo.GetAll(ctx, storage.Filter{"name": name})
	if err != nil {
		return model.Category{}, err
	}
	if len(found) == 0 {
		return model.Category{}, fmt.Errorf("category %q: %w", name, common.ErrNotFound)
	}
	return found[0], nil
}

func addOrReuse(ctx context.Context, repo service.Repository[model.Category], cat model.Category) (model.Category, error) {
	if err := cat.Validate(); err != nil {
		return cat, fmt.Errorf("category %q: %w", cat.Name, err)
	}

	existing, err := repo.GetAll(ctx, storage.Filter{"name": cat.Name})
	if err != nil {
		return cat, err
	}
	if len(existing) > 0 {
		slog.Debug("category already exists", "name", cat.Name, "pk", existing[0].PK)
		return existing[0], nil
	}

	if _, err := repo.Add(ctx, &cat); err != nil {
		return cat, fmt.Errorf("failed to add category %q: %w", cat.Name, err)
	}
	return cat, nil
}
