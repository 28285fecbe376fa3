package bound

import (
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// FunctionDeclaration is a bound function.  It is created before its body is
// bound so that it can be referred to; `DefineBody` must then be called
// exactly once.
type FunctionDeclaration struct {
	nodeBase

	Identifier *common.Identifier
	Parameters []*common.VariableSymbol

	// Class is the class declaring this function if it is a method.
	Class *types.Type

	body       *Block
	returnType *types.Type
}

func (*FunctionDeclaration) Kind() Kind { return KindFunctionDeclaration }
func (*FunctionDeclaration) statement() {}

// Name returns the name of the function.  Methods are named `Class.method`.
func (fd *FunctionDeclaration) Name() string {
	return fd.Identifier.Name
}

// DefineBody defines the body and concrete return type of the function.
func (fd *FunctionDeclaration) DefineBody(body *Block, returnType *types.Type) {
	if fd.body != nil {
		report.ICE("body of function `%s` defined multiple times", fd.Name())
	}

	fd.body = body
	fd.returnType = returnType
}

// IsDefined returns whether the body of the function has been defined.
func (fd *FunctionDeclaration) IsDefined() bool {
	return fd.body != nil
}

// Body returns the body of the function.
func (fd *FunctionDeclaration) Body() *Block {
	if fd.body == nil {
		report.ICE("body of function `%s` read before it was defined", fd.Name())
	}

	return fd.body
}

// ReturnType returns the concrete return type of the function.
func (fd *FunctionDeclaration) ReturnType() *types.Type {
	if fd.body == nil {
		report.ICE("return type of function `%s` read before it was defined", fd.Name())
	}

	return fd.returnType
}

// -----------------------------------------------------------------------------

// Program is the output of binding: all the declarations of a compilation
// unit.  Functions include class methods.
type Program struct {
	Globals   []*VariableDeclaration
	Structs   []*StructDeclaration
	Classes   []*ClassDeclaration
	Functions []*FunctionDeclaration
}

// Function looks up a function by name.
func (p *Program) Function(name string) (*FunctionDeclaration, bool) {
	for _, fd := range p.Functions {
		if fd.Name() == name {
			return fd, true
		}
	}

	return nil, false
}
