package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInit_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}

func TestObserveLLM(t *testing.T) {
	before := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("extract", "error"))
	ObserveLLM("extract", time.Now(), errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("extract", "error")))
}

func TestObserveSearch(t *testing.T) {
	before := testutil.ToFloat64(SearchesTotal.WithLabelValues("text", "true"))
	ObserveSearch("text", true, 3)
	assert.Equal(t, before+1, testutil.ToFloat64(SearchesTotal.WithLabelValues("text", "true")))
}

func TestObservePriceCache(t *testing.T) {
	hits := testutil.ToFloat64(PriceCacheTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(PriceCacheTotal.WithLabelValues("miss"))
	ObservePriceCache(true)
	ObservePriceCache(false)
	ObservePriceCache(false)
	assert.Equal(t, hits+1, testutil.ToFloat64(PriceCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(PriceCacheTotal.WithLabelValues("miss")))
}
