package thread

import (
	"go.uber.org/zap"
	nethtml "golang.org/x/net/html"
)

// Deduplicate removes direct child comments of container that repeat an id
// already seen earlier in document order, and returns how many it removed.
// Deeper duplicates are left for their own container's pass.
func Deduplicate(container *nethtml.Node, logger *zap.Logger) int {
	if container == nil {
		return 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	seen := make(map[string]struct{})
	removed := 0
	for _, comment := range findAll(container, xpathDirectComments) {
		id := CommentID(comment)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			logger.Debug("removing duplicate comment", zap.String("id", id))
			detach(comment)
			removed++
			continue
		}
		seen[id] = struct{}{}
	}
	return removed
}
