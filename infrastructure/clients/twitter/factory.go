package twitter

import (
	"post-radar/domain/model"
	"post-radar/domain/repository"
	"post-radar/usecase"
)

// NewSourceFactory builds the per-request provider selector. The variant is
// chosen from the member's stored settings: mock mode always works; live
// mode needs a bearer token and fails with a configuration error before any
// network call when it is missing.
func NewSourceFactory(defaultBaseURL string) usecase.SourceFactory {
	return func(settings *model.MemberSettings) (repository.ISource, error) {
		if settings == nil {
			return nil, usecase.ErrSourceNotConfigured
		}
		switch settings.SourceMode {
		case model.SourceModeLive:
			if settings.SourceToken == "" {
				return nil, usecase.ErrSourceNotConfigured
			}
			baseURL := settings.SourceAPIURL
			if baseURL == "" {
				baseURL = defaultBaseURL
			}
			return NewClient(baseURL, settings.SourceToken), nil
		case model.SourceModeMock, "":
			return NewMockClient(), nil
		default:
			return nil, usecase.ErrSourceNotConfigured
		}
	}
}
