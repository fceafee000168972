// Package mrengine is the facade over the map/reduce execution core:
// distributed fan-out across cluster nodes (package task), local
// fan-out across chunks via a work-stealing pool (package fjpool),
// chunked vector storage (packages vector, blobstore, objectstore),
// and the cluster/RPC contracts a real deployment supplies (packages
// cluster, rpc) or borrows an in-process stand-in for (cluster/local).
//
// A typical single-binary setup wires an in-process cluster and runs a
// task across it:
//
//	_, engines := mrengine.NewLocalCluster(n, mrengine.WithWorkers(8), mrengine.WithLogLevel(slog.LevelInfo))
//	defer mrengine.CloseLocalCluster(engines)
//
//	result, err := engines[0].Invoke(ctx, myTask, inputs, outputs)
package mrengine
