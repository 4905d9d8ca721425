package inbound

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestReplayCacheRemember(t *testing.T) {
	now := time.Now()
	c := NewReplayCache(10 * time.Minute)

	if !c.Remember("m1", now) {
		t.Fatal("first sighting should be new")
	}
	if c.Remember("m1", now.Add(time.Minute)) {
		t.Fatal("second sighting within retention should be rejected")
	}
	if !c.Remember("m2", now) {
		t.Fatal("unrelated id should be new")
	}
}

func TestReplayCacheExpiry(t *testing.T) {
	now := time.Now()
	c := NewReplayCache(10 * time.Minute)

	if !c.Remember("m1", now) {
		t.Fatal("first sighting should be new")
	}
	if !c.Remember("m1", now.Add(11*time.Minute)) {
		t.Fatal("id past retention should be treated as new")
	}
}

func TestReplayCacheMinimumRetention(t *testing.T) {
	now := time.Now()
	c := NewReplayCache(time.Second)

	c.Remember("m1", now)
	if c.Remember("m1", now.Add(5*time.Minute)) {
		t.Fatal("retention must not drop below the 10 minute protocol floor")
	}
}

func TestReplayCacheEvictsExpired(t *testing.T) {
	now := time.Now()
	c := NewReplayCache(10 * time.Minute)

	for i := 0; i < 600; i++ {
		c.Remember(fmt.Sprintf("old-%d", i), now)
	}
	later := now.Add(time.Hour)
	for i := 0; i < 600; i++ {
		c.Remember(fmt.Sprintf("new-%d", i), later)
	}
	if n := c.Len(); n > 700 {
		t.Fatalf("expired ids should be evicted, still tracking %d", n)
	}
}

func TestReplayCacheConcurrentInsertIfAbsent(t *testing.T) {
	c := NewReplayCache(10 * time.Minute)
	now := time.Now()

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Remember("contended", now) {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	n := 0
	for range wins {
		n++
	}
	if n != 1 {
		t.Fatalf("exactly one goroutine should win the insert, got %d", n)
	}
}
