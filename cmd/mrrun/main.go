// Command mrrun is a small CLI harness: it wires an in-process
// simulated cluster, seeds a synthetic int32 column (or two, for the
// dot-product job), runs a built-in job across the cluster, and prints
// the coalesced result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/distcol/mrengine/blobstore"
	"github.com/distcol/mrengine/codec"
	"github.com/distcol/mrengine/kv/memstore"
	mrengine "github.com/distcol/mrengine"
	"github.com/distcol/mrengine/vector"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

func main() {
	job := flag.String("job", "sum", "job to run: sum | dot | scale")
	nodes := flag.Int("nodes", 4, "simulated cluster size")
	rows := flag.Int64("rows", 5_000_000, "row count of the synthetic column(s)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}

	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	kvStore := memstore.New()

	_, engines := mrengine.NewLocalCluster(*nodes, mrengine.WithLogLevel(level))
	defer mrengine.CloseLocalCluster(engines)

	switch *job {
	case "sum":
		col := seedColumn(ctx, store, kvStore, "a.i32", *rows, func(i int64) int32 { return int32(i % 1000) })
		result, err := engines[0].Invoke(ctx, &sumJob{}, []vector.Vector{col}, nil)
		must(err)
		fmt.Printf("sum(%d rows) = %d\n", *rows, result.(*sumJob).Total)
	case "dot":
		a := seedColumn(ctx, store, kvStore, "a.i32", *rows, func(i int64) int32 { return int32(i % 97) })
		b := seedColumn(ctx, store, kvStore, "b.i32", *rows, func(i int64) int32 { return int32(i % 89) })
		result, err := engines[0].Invoke(ctx, &dotJob{}, []vector.Vector{a, b}, nil)
		must(err)
		fmt.Printf("dot(%d rows) = %d\n", *rows, result.(*dotJob).Total)
	case "scale":
		col := seedColumn(ctx, store, kvStore, "a.i32", *rows, func(i int64) int32 { return int32(i % 1000) })
		out := vector.NewAppendableVec(uuid.New(), col.NChunks(), kvStore, vector.WithCodec(codec.LZ4))
		result, err := engines[0].Invoke(ctx, &scaleJob{}, []vector.Vector{col}, []*vector.AppendableVec{out})
		must(err)
		fmt.Printf("scale(%d rows) sum = %d\n", *rows, result.(*scaleJob).Total)
	default:
		log.Fatalf("unknown job %q (want sum, dot, or scale)", *job)
	}
}

func seedColumn(ctx context.Context, store *blobstore.MemoryStore, kvStore *memstore.Store, name string, rows int64, gen func(int64) int32) vector.Vector {
	data := make([]byte, rows*4)
	for i := int64(0); i < rows; i++ {
		v := gen(i)
		data[4*i] = byte(v)
		data[4*i+1] = byte(v >> 8)
		data[4*i+2] = byte(v >> 16)
		data[4*i+3] = byte(v >> 24)
	}
	if err := store.Put(ctx, name, data); err != nil {
		log.Fatalf("seed %s: %v", name, err)
	}
	log.Printf("seeded %s: %d rows (%s)", name, rows, humanize.Bytes(uint64(len(data))))
	return vector.NewFileVec(uuid.New(), store, name, rows, kvStore)
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "mrrun:", err)
		os.Exit(1)
	}
}
