package report

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/opportunity-analyst/internal/analysis"
	"github.com/ignite/opportunity-analyst/internal/config"
)

var _ analysis.Narrator = (*Reporter)(nil)

func TestReporterReturnsGeneratedText(t *testing.T) {
	gen := &fakeGenerator{text: "report for"}
	r := NewReporter(gen)

	assert.Equal(t, "report for S1", r.Narrate(context.Background(), sampleInput()))
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestReporterFallsBackOnError(t *testing.T) {
	r := NewReporter(&fakeGenerator{err: errQuota})

	text := r.Narrate(context.Background(), sampleInput())
	assert.Equal(t, "Research report could not be generated: rate limit exceeded", text)
}

func TestReporterTimeout(t *testing.T) {
	r := NewReporter(blockingGenerator{}, WithTimeout(20*time.Millisecond))

	start := time.Now()
	text := r.Narrate(context.Background(), sampleInput())
	assert.True(t, strings.HasPrefix(text, FailurePrefix))
	assert.Contains(t, text, "context deadline exceeded")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestReporterCollapsesConcurrentRequests(t *testing.T) {
	gen := &fakeGenerator{
		text:    "shared",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	r := NewReporter(gen)

	const callers = 8
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Narrate(context.Background(), sampleInput())
		}(i)
	}

	<-gen.started
	time.Sleep(100 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	assert.Equal(t, int32(1), gen.calls.Load())
	for _, res := range results {
		assert.Equal(t, "shared S1", res)
	}
}

func TestReporterFirstCallerCancelDoesNotFailOthers(t *testing.T) {
	gen := &fakeGenerator{
		text:    "shared",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	r := NewReporter(gen)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan string, 1)
	go func() { first <- r.Narrate(firstCtx, sampleInput()) }()
	<-gen.started

	second := make(chan string, 1)
	go func() { second <- r.Narrate(context.Background(), sampleInput()) }()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case text := <-first:
		assert.True(t, strings.HasPrefix(text, FailurePrefix))
		assert.Contains(t, text, "context canceled")
	case <-time.After(2 * time.Second):
		t.Fatal("canceled caller did not return")
	}

	close(gen.release)
	select {
	case text := <-second:
		assert.Equal(t, "shared S1", text)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestReporterCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	gen := &fakeGenerator{text: "cached"}
	r := NewReporter(gen, WithCache(NewRedisCache(client), 10*time.Minute))

	first := r.Narrate(context.Background(), sampleInput())
	second := r.Narrate(context.Background(), sampleInput())

	assert.Equal(t, "cached S1", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), gen.calls.Load())

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "report:"))
	assert.Equal(t, 10*time.Minute, mr.TTL(keys[0]))

	// Different findings miss the cache.
	r.Narrate(context.Background(), emptyInput())
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestReporterDoesNotCacheFailures(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := NewReporter(&fakeGenerator{err: errQuota}, WithCache(NewRedisCache(client), time.Minute))
	r.Narrate(context.Background(), sampleInput())
	assert.Empty(t, mr.Keys())
}

func TestReporterSurvivesCacheOutage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	gen := &fakeGenerator{text: "live"}
	r := NewReporter(gen, WithCache(NewRedisCache(client), time.Minute))
	assert.Equal(t, "live S1", r.Narrate(context.Background(), sampleInput()))
}

func TestConnectRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := ConnectRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = ConnectRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestNewGenerator(t *testing.T) {
	gen, err := NewGenerator(context.Background(), config.ReportConfig{Provider: config.ProviderOpenAI})
	require.NoError(t, err)
	assert.IsType(t, &TemplateGenerator{}, gen, "no API key degrades to offline templates")

	gen, err = NewGenerator(context.Background(), config.ReportConfig{
		Provider: config.ProviderOpenAI, APIKey: "k", BaseURL: "https://api.groq.com/openai/v1", Model: "m",
	})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGenerator{}, gen)

	gen, err = NewGenerator(context.Background(), config.ReportConfig{Provider: config.ProviderTemplate})
	require.NoError(t, err)
	assert.Equal(t, "template", gen.Name())

	text, err := gen.Generate(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Contains(t, text, "# Opportunity Research Report: Subject Co")

	_, err = NewGenerator(context.Background(), config.ReportConfig{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
