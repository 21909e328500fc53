package docs

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/mdxsite/internal/logfields"
)

var errStop = errors.New("stop iteration")

// gitDates derives last_updated from the commit history of the repository
// holding the docs root. Results are cached per HEAD commit.
type gitDates struct {
	repo   *git.Repository
	top    string
	logger *slog.Logger

	mu    sync.Mutex
	head  string
	dates map[string]string
}

func openGitDates(root string, logger *slog.Logger) *gitDates {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		logger.Debug("Docs root is not in a git repository", logfields.Path(root), logfields.Error(err))
		return nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		logger.Debug("Git repository has no worktree", logfields.Path(root), logfields.Error(err))
		return nil
	}
	top := wt.Filesystem.Root()
	if resolved, err := filepath.EvalSymlinks(top); err == nil {
		top = resolved
	}
	return &gitDates{repo: repo, top: top, logger: logger, dates: make(map[string]string)}
}

// lastUpdated returns the commit date (YYYY-MM-DD, UTC) of the latest commit
// touching path, or "" when unknown.
func (g *gitDates) lastUpdated(path string) string {
	ref, err := g.repo.Head()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	rel, err := filepath.Rel(g.top, path)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)

	g.mu.Lock()
	defer g.mu.Unlock()
	if head := ref.Hash().String(); head != g.head {
		g.head = head
		g.dates = make(map[string]string)
	}
	if d, ok := g.dates[rel]; ok {
		return d
	}

	cIter, err := g.repo.Log(&git.LogOptions{From: ref.Hash(), FileName: &rel})
	if err != nil {
		g.logger.Debug("Git log failed", logfields.File(rel), logfields.Error(err))
		return ""
	}
	defer cIter.Close()

	var date string
	err = cIter.ForEach(func(c *object.Commit) error {
		date = c.Committer.When.UTC().Format("2006-01-02")
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		g.logger.Debug("Git history walk failed", logfields.File(rel), logfields.Error(err))
	}
	g.dates[rel] = date
	return date
}
