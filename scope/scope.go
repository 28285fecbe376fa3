package scope

import (
	"errors"

	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// ErrRedeclared is returned by `Define` when the name is already defined in
// the current frame.
var ErrRedeclared = errors.New("name already declared in this scope")

// RootFrame is the index of the outermost (global) frame.
const RootFrame = 0

// frame is a single lexical scope: a table of names.
type frame struct {
	parent int
	names  map[string]*common.Identifier
}

// Stack is a lexical scope stack.  Frames are stored in an arena and refer to
// their parent by index.  Released frames stay in the arena so that lookups
// can still be made from them after the fact (see `FindFrom`).
type Stack struct {
	frames  []frame
	current int
}

// NewStack creates a new scope stack containing only the root frame.
func NewStack() *Stack {
	return &Stack{
		frames:  []frame{{parent: -1, names: make(map[string]*common.Identifier)}},
		current: RootFrame,
	}
}

// Handle is the handle to a pushed frame.  Releasing it pops the frame.
type Handle struct {
	s        *Stack
	frame    int
	released bool
}

// Push pushes a new, empty frame and returns its handle.  The handle should
// always be released with `defer`:
//
//	defer s.Push().Release()
func (s *Stack) Push() *Handle {
	s.frames = append(s.frames, frame{parent: s.current, names: make(map[string]*common.Identifier)})
	s.current = len(s.frames) - 1
	return &Handle{s: s, frame: s.current}
}

// Frame returns the index of the frame created by this handle.
func (h *Handle) Frame() int {
	return h.frame
}

// Release pops the frame created by this handle.  It must be the current
// frame.
func (h *Handle) Release() {
	if h.released {
		report.ICE("scope frame %d released twice", h.frame)
	} else if h.s.current != h.frame {
		report.ICE("released scope frame %d but the current frame is %d", h.frame, h.s.current)
	}

	h.released = true
	h.s.current = h.s.frames[h.frame].parent
}

// Current returns the index of the current frame.
func (s *Stack) Current() int {
	return s.current
}

// Depth returns the number of frames between the current frame and the root
// frame.
func (s *Stack) Depth() int {
	depth := 0
	for f := s.current; f != RootFrame; f = s.frames[f].parent {
		depth++
	}

	return depth
}

// Define defines a new name in the current frame and returns its identifier.
func (s *Stack) Define(name string, typ *types.Type, sym *common.VariableSymbol) (*common.Identifier, error) {
	id := common.NewIdentifier(name, typ, sym)
	if err := s.DefineAs(name, id); err != nil {
		return nil, err
	}

	return id, nil
}

// DefineAs binds `name` to an existing identifier in the current frame.  This
// is used when the identifier's name differs from the name it is visible by,
// as for class methods.
func (s *Stack) DefineAs(name string, id *common.Identifier) error {
	names := s.frames[s.current].names
	if _, ok := names[name]; ok {
		return ErrRedeclared
	}

	names[name] = id
	return nil
}

// Find looks up a name starting from the current frame.
func (s *Stack) Find(name string) *common.Identifier {
	return s.FindFrom(s.current, name)
}

// FindFrom looks up a name starting from the given frame and walking out
// through its parents.  It returns `common.Undefined` if no frame defines the
// name.
func (s *Stack) FindFrom(frameIndex int, name string) *common.Identifier {
	if frameIndex < 0 || frameIndex >= len(s.frames) {
		report.ICE("lookup from unknown scope frame %d", frameIndex)
	}

	for f := frameIndex; f != -1; f = s.frames[f].parent {
		if id, ok := s.frames[f].names[name]; ok {
			return id
		}
	}

	return common.Undefined
}

// FindWithin looks up a name starting from the current frame and walking out
// no further than the `outermost` frame.
func (s *Stack) FindWithin(outermost int, name string) *common.Identifier {
	for f := s.current; f != -1; f = s.frames[f].parent {
		if id, ok := s.frames[f].names[name]; ok {
			return id
		}

		if f == outermost {
			break
		}
	}

	return common.Undefined
}

// FindLocal looks up a name in the current frame only.
func (s *Stack) FindLocal(name string) *common.Identifier {
	if id, ok := s.frames[s.current].names[name]; ok {
		return id
	}

	return common.Undefined
}
