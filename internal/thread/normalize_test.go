package thread

import (
	"testing"

	"github.com/go-playground/assert/v2"
	nethtml "golang.org/x/net/html"
)

func TestDeduplicate_KeepsFirstEncountered(t *testing.T) {
	doc := mustParse(t, page(comment("c1", comment("c11"), comment("c12"), comment("c11"), comment("c12"), comment("c13"))))
	replies := Replies(mustComment(t, doc, "c1"))
	first := commentsWithID(replies, "c11")[0]

	removed := Deduplicate(replies, nil)

	assert.Equal(t, removed, 2)
	assert.Equal(t, len(commentsWithID(replies, "c11")), 1)
	assert.Equal(t, len(commentsWithID(replies, "c12")), 1)
	assert.Equal(t, commentsWithID(replies, "c11")[0] == first, true)
	ids := make([]string, 0, 3)
	for _, c := range ChildComments(mustComment(t, doc, "c1")) {
		ids = append(ids, CommentID(c))
	}
	assert.Equal(t, ids, []string{"c11", "c12", "c13"})
}

func TestDeduplicate_LeavesDeeperDuplicates(t *testing.T) {
	doc := mustParse(t, page(comment("c1",
		comment("c11", comment("x"), comment("x")),
		comment("c12"),
	)))
	replies := Replies(mustComment(t, doc, "c1"))

	assert.Equal(t, Deduplicate(replies, nil), 0)
	nested := Replies(mustComment(t, doc, "c11"))
	assert.Equal(t, len(commentsWithID(nested, "x")), 2)
}

func TestDeduplicate_IgnoresCommentsWithoutID(t *testing.T) {
	doc := mustParse(t, page(comment("c1",
		`<div class="comment"><p>anonymous</p></div>`,
		`<div class="comment"><p>anonymous</p></div>`,
	)))
	replies := Replies(mustComment(t, doc, "c1"))

	assert.Equal(t, Deduplicate(replies, nil), 0)
	assert.Equal(t, Deduplicate((*nethtml.Node)(nil), nil), 0)
}
