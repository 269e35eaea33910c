package capture

import "context"

// CaptionItem is one extracted caption row.
type CaptionItem struct {
	Speaker string
	Text    string
}

// CaptionSource reads the live captions container. Implementations query
// the page at call time, so commits always see current DOM state rather
// than values captured when the mutation fired.
type CaptionSource interface {
	// Count returns the number of caption items currently rendered.
	Count(ctx context.Context) (int, error)
	// Item extracts the caption row at index. ok is false when the index
	// no longer exists (captions cleared or re-rendered).
	Item(ctx context.Context, index int) (item CaptionItem, ok bool, err error)
}

// ChatItem is one extracted chat row with the identity hints used for
// re-processing suppression.
type ChatItem struct {
	Sender    string
	Text      string
	TimeStamp string
	ItemID    string
	TextBoxID string
}

// ChatSource reads the live chat container.
type ChatSource interface {
	// Recent returns up to n of the newest chat items, oldest first.
	Recent(ctx context.Context, n int) ([]ChatItem, error)
}
