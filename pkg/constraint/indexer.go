package constraint

// indexer interface is design to give a unique index to a combination of decision variable's attributes
type indexer interface {
	// Returns a unique index to a combination of decision variable's attributes
	Index(course, room, period uint64) uint64
	// Returns the number of distinct indices
	Size() uint64
}

func newIndexer(courses, rooms, periods uint64) indexer {
	return &indexerImplementation{
		courses: courses,
		rooms:   rooms,
		periods: periods,
	}
}

type indexerImplementation struct {
	courses uint64
	rooms   uint64
	periods uint64
}

func (indexer *indexerImplementation) Index(course, room, period uint64) uint64 {
	return period + indexer.periods*room + indexer.periods*indexer.rooms*course
}

func (indexer *indexerImplementation) Size() uint64 {
	return indexer.courses * indexer.rooms * indexer.periods
}
