package service

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/boardtree-dev/boardtree/config"
	"github.com/boardtree-dev/boardtree/domain"
	apperrors "github.com/boardtree-dev/boardtree/errors"
	"github.com/boardtree-dev/boardtree/metrics"
	"github.com/boardtree-dev/boardtree/storage"
)

// Path derives URL-safe identifiers for boards and topics and resolves
// hierarchical board paths against a built tree.
type Path struct {
	mode config.SlugMode
}

func NewPath(mode config.SlugMode) *Path {
	if mode == "" {
		mode = config.SlugModeStrict
	}
	return &Path{mode: mode}
}

// asciiFold strips diacritics: decompose, drop combining marks, recompose.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify transliterates a title to a lowercase ASCII slug: diacritics are
// folded away, every run of non-alphanumerics becomes one hyphen and edge
// hyphens are trimmed.
func Slugify(title string) string {
	folded, _, err := transform.String(asciiFold, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AssignBoardSlug picks a slug unique among the given siblings. In strict
// mode a collision is an error for the caller to surface; in dedupe mode a
// numeric suffix is appended until the slug is free.
func (p *Path) AssignBoardSlug(title string, siblings []*domain.Board) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "board"
	}

	taken := make(map[string]struct{}, len(siblings))
	for _, sibling := range siblings {
		taken[sibling.Slug] = struct{}{}
	}

	if _, collides := taken[base]; !collides {
		return base, nil
	}
	metrics.SlugCollision()

	if p.mode == config.SlugModeStrict {
		return "", &apperrors.DuplicatePathError{Slug: base}
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, collides := taken[candidate]; !collides {
			return candidate, nil
		}
	}
}

// AssignTopicSlug derives a topic slug and enforces the global uniqueness
// of topic titles and slugs across all live topics, independent of the
// board slug mode.
func (p *Path) AssignTopicSlug(store storage.TopicStorage, title string) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		slug = "topic"
	}

	conflicts, err := store.FindTopicsByTitleOrSlug(title, slug)
	if err != nil {
		return "", err
	}
	if len(conflicts) > 0 {
		metrics.SlugCollision()
		ids := make([]int64, 0, len(conflicts))
		for _, topic := range conflicts {
			ids = append(ids, topic.Id)
		}
		return "", &apperrors.DuplicateTopicError{Title: title, ConflictIds: ids}
	}
	return slug, nil
}

// BuildBoardPath joins the slugs of the board's ancestor chain with "/".
// Only meaningful on boards attached to a built tree.
func (p *Path) BuildBoardPath(board *domain.Board) string {
	segments := make([]string, 0, 4)
	for _, ancestor := range board.Parents() {
		segments = append(segments, ancestor.Slug)
	}
	segments = append(segments, board.Slug)
	return strings.Join(segments, "/")
}

// LookupBoardByPath walks a slash-separated slug path through the visible
// tree, one level per segment.
func (p *Path) LookupBoardByPath(tree *domain.BoardTree, path string) (*domain.Board, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, fmt.Errorf("empty board path: %w", apperrors.NotFound)
	}

	level := tree.Roots
	var found *domain.Board
	for _, segment := range strings.Split(path, "/") {
		found = nil
		for _, board := range level {
			if board.Slug == segment {
				found = board
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("board path %q: %w", path, apperrors.NotFound)
		}
		level = found.Children
	}
	return found, nil
}
