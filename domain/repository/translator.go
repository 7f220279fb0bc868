package repository

import "context"

// TranslationResult carries the parsed sections of one completion response.
type TranslationResult struct {
	TranslatedText       string
	CommentText          string
	QuotedTranslatedText *string
}

// ITranslator wraps the configurable AI completion call. Implementations
// resolve the member's provider settings first and must fail with a
// configuration error before any network call when provider or key is
// missing.
type ITranslator interface {
	Translate(ctx context.Context, memberID, text string, quotedText *string) (*TranslationResult, error)
}
