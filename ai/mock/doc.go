// Package mock provides test double implementations of ai.Summarizer.
//
// The mock lets tests run without an external model service and with
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Default behavior: keeps the leading tenth of the text
//	summarizer := mock.NewMockSummarizer()
//
//	// Custom behavior injection
//	summarizer := mock.NewMockSummarizer().
//	    WithSummarizeFunc(func(ctx context.Context, req ai.SummaryRequest) (ai.SummaryResponse, error) {
//	        return ai.SummaryResponse{SummaryText: "short"}, nil
//	    })
//
//	// Fail the first two calls with a transient error, then succeed
//	summarizer := mock.NewMockSummarizer().FailTimes(2, ai.Transient(errors.New("503")))
//
//	// Check call counts
//	count := summarizer.CallCount()
package mock
