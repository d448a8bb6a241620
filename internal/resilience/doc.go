// Package resilience groups the fault tolerance helpers used by every
// outbound call: retry with exponential backoff and jitter, and circuit
// breakers around content sources, LLM providers and the quote provider.
//
// Calls are layered retry-outside, breaker-inside:
//
//	v, err := retry.Do(ctx, retry.LLMConfig(), func(ctx context.Context) (string, error) {
//	    return circuitbreaker.Call(cb, func() (string, error) {
//	        return complete(ctx, prompt)
//	    })
//	})
package resilience
