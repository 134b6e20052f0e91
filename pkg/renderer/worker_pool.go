package renderer

import (
	"context"
	"runtime"
	"sync"

	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile   *Tile
	TaskID int    // For deterministic ordering
	Frame  *Frame // Shared frame to write pixels to
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Worker int
	Error  error
}

// WorkerPool manages parallel tile rendering. Each worker owns one
// kernel resource for its whole life.
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	stopOnce    sync.Once
	cancel      context.CancelFunc
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID          int
	res         *rt.Resource
	renderer    *TileRenderer
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates a worker pool with one resource per worker. It
// fails when the model cannot hand out resources.
func NewWorkerPool(model *rt.Model, view View, width, height int, cfg Config) (*WorkerPool, error) {
	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	maxTiles := len(NewTileGrid(width, height, cfg.TileSize))
	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, maxTiles),   // Buffer for all tiles
		resultQueue: make(chan TileResult, maxTiles), // Buffer for all results
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		res, err := model.NewResource()
		if err != nil {
			wp.release()
			return nil, err
		}
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			res:         res,
			renderer:    NewTileRenderer(res, view, width, height, cfg),
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}
	return wp, nil
}

// Start begins all workers. Tasks taken after ctx is done, or after any
// tile has failed, fail with the context's error instead of being
// rendered.
func (wp *WorkerPool) Start(ctx context.Context) {
	ctx, wp.cancel = context.WithCancel(ctx)
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(ctx, wp.cancel, &wp.wg)
	}
}

// Stop gracefully shuts down all workers and releases their resources
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue) // No more tasks
		wp.wg.Wait()        // Wait for workers to finish
		close(wp.resultQueue)
		if wp.cancel != nil {
			wp.cancel()
		}
		wp.release()
	})
}

func (wp *WorkerPool) release() {
	for _, w := range wp.workers {
		w.res.Release()
	}
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// RayStats reduces the kernel counters of every worker. Call it once the
// workers are idle.
func (wp *WorkerPool) RayStats() rt.RayStats {
	var total rt.RayStats
	for _, w := range wp.workers {
		total.Add(w.res.Stats())
	}
	return total
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context, cancel context.CancelFunc, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		result := TileResult{TaskID: task.TaskID, Worker: w.ID}
		if err := ctx.Err(); err != nil {
			result.Error = err
			w.resultQueue <- result
			continue
		}

		// Tiles have non-overlapping bounds, so writing the shared frame is safe
		result.Error = w.renderer.RenderTileBounds(task.Tile.Bounds, task.Frame)
		w.resultQueue <- result

		// Kernel errors are fatal. The result is queued before cancelling
		// so it is received ahead of the tiles that fail after it.
		if result.Error != nil {
			cancel()
		}
	}
}
