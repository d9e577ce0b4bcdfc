// Package async implements a generic Future pattern for running dispatch
// work off the calling goroutine.
//
// A Future[T] is produced by Run and resolved exactly once. Await blocks
// until the computation finishes; AwaitWithTimeout bounds the wait and
// returns ErrTimeout when it elapses first.
//
//	future := async.Run(ctx, msg, func(ctx context.Context, m message.Message) (pipeline.Result, error) {
//		return b.Dispatch(ctx, m)
//	})
//
//	// other work...
//
//	result, err := future.Await()
//
// WaitAll collects the results of several futures in order; WaitAny returns
// as soon as the first future resolves.
//
// All operations are safe for concurrent use. Run checks the context before
// starting the computation, so a pre-canceled context never spawns work.
package async
