package directory

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
)

const DefaultMaxDepth = 32

type walkItem struct {
	dept  Department
	depth int
}

// Walker 以前序走訪遠端部門樹
type Walker struct {
	maxDepth int
	logger   *slog.Logger
}

func NewWalker(maxDepth int, logger *slog.Logger) *Walker {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{
		maxDepth: maxDepth,
		logger:   logger.With(slog.String("caller", "directory.Walker")),
	}
}

// Walk 從虛擬根部門開始走訪，回傳順序與遞迴前序相同，根部門本身不在結果中。
// 取子部門失敗或超過深度上限的子樹只記錄後略過。
func (w *Walker) Walk(ctx context.Context, src ISource, token string) ([]Department, error) {
	root := src.Root()
	source := src.Name()

	result := make([]Department, 0)
	visited := map[string]struct{}{root.ExternalID: {}}
	stack := []walkItem{{dept: root, depth: 0}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if item.depth > 0 {
			result = append(result, item.dept)
		}

		if item.depth >= w.maxDepth {
			w.logger.Warn("Skip subtree beyond depth limit",
				slog.String("source", source),
				slog.String("departmentID", item.dept.ExternalID),
				slog.Int("depth", item.depth),
			)
			continue
		}

		children, err := src.ListSubDepartments(ctx, token, item.dept.ExternalID)
		if err != nil {
			w.logger.Error("Fail to list sub departments",
				slog.String("source", source),
				slog.String("departmentID", item.dept.ExternalID),
				slog.Any("error", err),
			)
			continue
		}

		// 反向推入，讓第一個子部門最先被取出
		for i := len(children) - 1; i >= 0; i-- {
			child := children[i]
			if _, ok := visited[child.ExternalID]; ok || child.ExternalID == "" {
				continue
			}
			visited[child.ExternalID] = struct{}{}

			child.Source = source
			if item.depth == 0 {
				child.ParentID = nil
			} else {
				child.ParentID = lo.ToPtr(item.dept.ExternalID)
			}
			stack = append(stack, walkItem{dept: child, depth: item.depth + 1})
		}
	}

	return result, nil
}
