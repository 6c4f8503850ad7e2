package batchloader_test

import (
	"context"
	"fmt"

	"github.com/probablyarth/batchloader-go"
)

func Example() {
	directory := map[int]string{1: "ada", 2: "grace"}

	users, err := batchloader.New[int, string](
		func(_ context.Context, ids []int) ([]batchloader.Result[string], error) {
			fmt.Println("fetching", ids)
			results := make([]batchloader.Result[string], len(ids))
			for i, id := range ids {
				results[i] = batchloader.Ok(directory[id])
			}
			return results, nil
		},
		nil,
	)
	if err != nil {
		panic(err)
	}

	for _, r := range users.LoadMany(context.Background(), []int{1, 2, 1}) {
		fmt.Println(r.Value)
	}
	// Output:
	// fetching [1 2]
	// ada
	// grace
	// ada
}

func ExampleManualScheduler() {
	sched := batchloader.NewManualScheduler()
	store := map[string]int{}

	counters, err := batchloader.New[string, int](
		func(_ context.Context, keys []string) ([]batchloader.Result[int], error) {
			fmt.Println("load", keys)
			results := make([]batchloader.Result[int], len(keys))
			for i, k := range keys {
				results[i] = batchloader.Ok(store[k])
			}
			return results, nil
		},
		func(_ context.Context, pairs []batchloader.Pair[string, int]) ([]batchloader.Result[int], error) {
			fmt.Println("save", len(pairs))
			results := make([]batchloader.Result[int], len(pairs))
			for i, p := range pairs {
				store[p.Key] = p.Value
				results[i] = batchloader.Ok(p.Value)
			}
			return results, nil
		},
		batchloader.WithScheduler(sched),
	)
	if err != nil {
		panic(err)
	}

	counters.SaveThunk("a", 1)
	counters.SaveThunk("b", 2)
	a := counters.LoadThunk("a")
	b := counters.LoadThunk("b")
	sched.Tick()

	ra, _ := a.Result()
	rb, _ := b.Result()
	fmt.Println(ra.Value, rb.Value)
	// Output:
	// save 2
	// load [a b]
	// 1 2
}
