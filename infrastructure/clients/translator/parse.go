package translator

import (
	"strings"

	"post-radar/domain/repository"
)

// ParseResponse slices the raw completion output on the literal section
// markers. Formatting anomalies never fail: when no markers are present at
// all the entire response becomes the translation and the comment stays
// empty.
func ParseResponse(raw string) *repository.TranslationResult {
	transIdx := strings.Index(raw, MarkerTranslation)
	if transIdx < 0 {
		return &repository.TranslationResult{
			TranslatedText: strings.TrimSpace(raw),
		}
	}

	rest := raw[transIdx+len(MarkerTranslation):]
	quotedIdx := strings.Index(rest, MarkerQuotedTranslation)
	commentIdx := strings.Index(rest, MarkerComment)

	res := &repository.TranslationResult{}
	switch {
	case quotedIdx >= 0 && (commentIdx < 0 || quotedIdx < commentIdx):
		res.TranslatedText = strings.TrimSpace(rest[:quotedIdx])
		afterQuoted := rest[quotedIdx+len(MarkerQuotedTranslation):]
		if idx := strings.Index(afterQuoted, MarkerComment); idx >= 0 {
			quoted := strings.TrimSpace(afterQuoted[:idx])
			res.QuotedTranslatedText = &quoted
			res.CommentText = strings.TrimSpace(afterQuoted[idx+len(MarkerComment):])
		} else {
			quoted := strings.TrimSpace(afterQuoted)
			res.QuotedTranslatedText = &quoted
		}
	case commentIdx >= 0:
		res.TranslatedText = strings.TrimSpace(rest[:commentIdx])
		res.CommentText = strings.TrimSpace(rest[commentIdx+len(MarkerComment):])
	default:
		res.TranslatedText = strings.TrimSpace(rest)
	}
	return res
}
