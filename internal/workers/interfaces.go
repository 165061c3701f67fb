// Package workers runs the background jobs of the sync agent. It defines
// the Worker interface and a Workers aggregate that starts every registered
// job in a unified way.
package workers

// Worker is implemented by every background job. Run starts the job; long
// running jobs spawn their goroutine inside Run and return immediately.
type Worker interface {
	Run()
}
