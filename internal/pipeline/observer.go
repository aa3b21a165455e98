package pipeline

// Observer receives progress notifications. Calls come from the goroutine
// running the pipeline.
type Observer interface {
	// FileStarted announces a file and the number of units of work in it.
	FileStarted(name string, total int)
	// EntryDone reports one entry attempted during translation.
	EntryDone(name string, ok bool)
	FileDone(name string, err error)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) FileStarted(string, int) {}
func (NopObserver) EntryDone(string, bool)  {}
func (NopObserver) FileDone(string, error)  {}

// FileResult is the outcome of one operation on one file.
type FileResult struct {
	Name       string
	Entries    int
	Translated int
	Failed     int
	Replaced   int
	Written    bool
	Warnings   []string
	Err        error
}

// Summary collects per-file results of a batch.
type Summary struct {
	Files []FileResult
}

// Failed counts the files that ended with an error.
func (s *Summary) Failed() int {
	n := 0
	for _, f := range s.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Written counts the files that were written.
func (s *Summary) Written() int {
	n := 0
	for _, f := range s.Files {
		if f.Written {
			n++
		}
	}
	return n
}
