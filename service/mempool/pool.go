package mempool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// ErrExhausted is returned by Allocate once the pool has grown to its
	// slab limit and no free block remains.
	ErrExhausted = errors.New("memory pool exhausted")

	// ErrForeignHandle is returned when a handle does not belong to the
	// pool it is presented to.
	ErrForeignHandle = errors.New("handle does not belong to this pool")

	// ErrDoubleFree is returned when a block is deallocated twice.
	ErrDoubleFree = errors.New("block already free")
)

// poolSeq tags each pool with a process-unique identity so that handles can
// be validated against the pool they came from.
var poolSeq atomic.Uint64

// Handle identifies an allocated block. Handles are opaque: callers obtain
// them from Allocate, exchange the block bytes via Bytes and return them
// with Deallocate. The zero Handle is never valid.
type Handle struct {
	pool  uint64
	index int
}

// Config controls pool geometry.
type Config struct {
	// BlockSize is the fixed size in bytes of every block.
	BlockSize int `json:"blockSize" yaml:"blockSize"`

	// BlocksPerSlab is the number of blocks added with each slab.
	BlocksPerSlab int `json:"blocksPerSlab" yaml:"blocksPerSlab"`

	// MaxSlabs bounds growth; zero or negative means DefaultMaxSlabs.
	MaxSlabs int `json:"maxSlabs" yaml:"maxSlabs"`
}

const (
	// DefaultBlocksPerSlab is the number of blocks a slab carries unless
	// configured otherwise.
	DefaultBlocksPerSlab = 1024

	// DefaultMaxSlabs bounds pool growth when the configuration does not.
	DefaultMaxSlabs = 64
)

// DefaultConfig returns a pool configuration for the supplied block size.
func DefaultConfig(blockSize int) Config {
	return Config{
		BlockSize:     blockSize,
		BlocksPerSlab: DefaultBlocksPerSlab,
		MaxSlabs:      DefaultMaxSlabs,
	}
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	if c.BlockSize <= 0 {
		return fmt.Errorf("blockSize must be > 0, got %d", c.BlockSize)
	}
	if c.BlocksPerSlab <= 0 {
		return fmt.Errorf("blocksPerSlab must be > 0, got %d", c.BlocksPerSlab)
	}
	return nil
}

// Pool is a fixed-block-size allocator backed by growable slabs. A single
// mutex guards the free list; growth appends one slab at a time up to
// MaxSlabs and the pool never shrinks.
type Pool struct {
	id     uint64
	config Config

	mu        sync.Mutex
	slabs     [][]byte
	free      []int
	allocated []bool
}

// Stats is a point-in-time snapshot of pool occupancy.
type Stats struct {
	BlockSize  int
	Slabs      int
	FreeBlocks int
}

// New creates a pool with one initial slab.
func New(config Config) (*Pool, error) {
	if config.BlocksPerSlab <= 0 {
		config.BlocksPerSlab = DefaultBlocksPerSlab
	}
	if config.MaxSlabs <= 0 {
		config.MaxSlabs = DefaultMaxSlabs
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	p := &Pool{
		id:     poolSeq.Add(1),
		config: config,
	}
	p.grow()
	return p, nil
}

// Allocate pops a free block and returns its handle. When the free list is
// exhausted the pool grows by one slab first; once MaxSlabs is reached
// Allocate fails with ErrExhausted.
func (p *Pool) Allocate() (Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		if len(p.slabs) >= p.config.MaxSlabs {
			return Handle{}, ErrExhausted
		}
		p.grow()
	}

	index := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.allocated[index] = true
	return Handle{pool: p.id, index: index}, nil
}

// Deallocate returns the block behind h to the free list. Handles from
// another pool fail with ErrForeignHandle; freeing an already-free block
// fails with ErrDoubleFree.
func (p *Pool) Deallocate(h Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.check(h); err != nil {
		return err
	}
	if !p.allocated[h.index] {
		return fmt.Errorf("block %d: %w", h.index, ErrDoubleFree)
	}
	p.allocated[h.index] = false
	p.free = append(p.free, h.index)
	return nil
}

// Bytes returns the block behind h. The slice aliases pool memory and
// remains valid until the block is deallocated.
func (p *Pool) Bytes(h Handle) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.check(h); err != nil {
		return nil, err
	}
	if !p.allocated[h.index] {
		return nil, fmt.Errorf("block %d: %w", h.index, ErrDoubleFree)
	}
	slab := p.slabs[h.index/p.config.BlocksPerSlab]
	offset := (h.index % p.config.BlocksPerSlab) * p.config.BlockSize
	return slab[offset : offset+p.config.BlockSize], nil
}

// Stats returns a snapshot of pool occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		BlockSize:  p.config.BlockSize,
		Slabs:      len(p.slabs),
		FreeBlocks: len(p.free),
	}
}

func (p *Pool) check(h Handle) error {
	if h.pool != p.id {
		return ErrForeignHandle
	}
	if h.index < 0 || h.index >= len(p.allocated) {
		return ErrForeignHandle
	}
	return nil
}

// grow appends one slab and pushes its block indices onto the free list.
// Callers hold p.mu.
func (p *Pool) grow() {
	base := len(p.slabs) * p.config.BlocksPerSlab
	p.slabs = append(p.slabs, make([]byte, p.config.BlockSize*p.config.BlocksPerSlab))
	p.allocated = append(p.allocated, make([]bool, p.config.BlocksPerSlab)...)
	for i := 0; i < p.config.BlocksPerSlab; i++ {
		p.free = append(p.free, base+i)
	}
}
