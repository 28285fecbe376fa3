package bind

import (
	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// classInfo is the binding state of a class.
type classInfo struct {
	decl  *ast.ClassDecl
	typ   *types.Type
	bound *bound.ClassDeclaration

	// frame is the index of the class's scope frame.  It is -1 until the
	// class's methods are bound.
	frame int

	// methods maps the short names of the class's methods to their syntax.
	methods map[string]*callable
	order   []*callable
}

// BindUnit binds all the declarations of a compilation unit.  Declarations are
// processed in the following order:
//
//  1. struct and class type names
//  2. struct and class field tables, then recursive containment checks
//  3. callables, phase 1: every callable's name is recorded with its syntax
//  4. global variables
//  5. callables, phase 2: every callable is defined and its body bound, top
//     level functions first and then each class's methods in the class scope
//  6. callables, phase 3: placeholder call sites are resolved
func (b *Binder) BindUnit(unit *ast.CompilationUnit) *bound.Program {
	var structs []*ast.StructDecl
	var classes []*ast.ClassDecl
	var globals []*ast.VarDecl
	var funcs []ast.Decl

	for _, decl := range unit.Declarations {
		switch v := decl.(type) {
		case *ast.StructDecl:
			structs = append(structs, v)
		case *ast.ClassDecl:
			classes = append(classes, v)
		case *ast.VarDecl:
			globals = append(globals, v)
		case *ast.FuncDecl, *ast.LambdaDecl:
			funcs = append(funcs, v)
		default:
			report.ICE("binder: unhandled declaration %T", decl)
		}
	}

	// declare all the type names so that fields may refer to any of them
	var structTypes []*types.Type
	for _, sd := range structs {
		if typ, ok := b.declareTypeName(sd.Name, sd.Span(), b.table.NewStruct(sd.Name)); ok {
			structTypes = append(structTypes, typ)
			b.program.Structs = append(b.program.Structs, b.factory.NewStructDeclaration(sd.Span(), typ))
		} else {
			structTypes = append(structTypes, nil)
		}
	}

	var infos []*classInfo
	for _, cd := range classes {
		typ, ok := b.declareTypeName(cd.Name, cd.Span(), b.table.NewClass(cd.Name))
		if !ok {
			continue
		}

		ci := &classInfo{
			decl:    cd,
			typ:     typ,
			bound:   b.factory.NewClassDeclaration(cd.Span(), typ),
			frame:   -1,
			methods: make(map[string]*callable),
		}

		b.classes[cd.Name] = ci
		b.program.Classes = append(b.program.Classes, ci.bound)
		infos = append(infos, ci)
	}

	// bind the field tables
	for i, sd := range structs {
		if structTypes[i] != nil {
			b.bindStructFields(sd, structTypes[i])
		}
	}

	for _, ci := range infos {
		b.bindClassFields(ci)
	}

	b.checkRecursiveContainment(structTypes, infos)

	// phase 1: record all callables
	for _, decl := range funcs {
		b.recordCallable(b.callables, decl, nil)
	}

	for _, ci := range infos {
		for _, member := range ci.decl.Members {
			switch member.(type) {
			case *ast.FuncDecl, *ast.LambdaDecl:
				b.recordCallable(ci.methods, member, ci)
			}
		}
	}

	// bind the globals
	for _, vd := range globals {
		b.program.Globals = append(b.program.Globals, b.bindVarDecl(vd, true))
	}

	// phase 2: bind all callables
	for _, decl := range funcs {
		if c, ok := b.callables[callableName(decl)]; ok && c.syntax == decl {
			b.bindCallable(c)
		}
	}

	for _, ci := range infos {
		b.bindClass(ci)
	}

	// phase 3: resolve all placeholders
	b.resolvePlaceholders()

	return b.program
}

// declareTypeName declares a new named type.  It returns false if the name is
// already taken.
func (b *Binder) declareTypeName(name string, span *report.TextSpan, typ *types.Type) (*types.Type, bool) {
	if _, ok := types.Lookup(name); ok {
		b.recError(report.KindDef, span, "cannot redefine predefined type `%s`", name)
		return nil, false
	}

	if _, ok := b.typeNames[name]; ok {
		b.recError(report.KindDef, span, "type `%s` defined multiple times", name)
		return nil, false
	}

	b.typeNames[name] = typ
	return typ, true
}

// bindStructFields binds the field table of a struct.
func (b *Binder) bindStructFields(sd *ast.StructDecl, typ *types.Type) {
	for _, field := range sd.Fields {
		b.addField(typ, field.Name, field.Span(), b.resolveType(field.Type))
	}

	if len(typ.Members.Fields) == 0 {
		b.recError(report.KindDef, sd.Span(), "struct `%s` must have at least one field", sd.Name)
	}
}

// bindClassFields binds the field table of a class.  Class fields are instance
// fields: they cannot have initializers as instances are zero-initialised.
func (b *Binder) bindClassFields(ci *classInfo) {
	for _, member := range ci.decl.Members {
		switch v := member.(type) {
		case *ast.VarDecl:
			if v.Init != nil {
				b.recError(report.KindDef, v.Init.Span(), "class field `%s.%s` cannot have an initializer", ci.typ.Name, v.Name)
			}

			if v.Type == nil {
				b.recError(report.KindDef, v.Span(), "class field `%s.%s` must have a type", ci.typ.Name, v.Name)
				continue
			}

			b.addField(ci.typ, v.Name, v.Span(), b.resolveType(v.Type))
		case *ast.FuncDecl, *ast.LambdaDecl:
			// methods are bound with the other callables
		case *ast.StructDecl, *ast.ClassDecl:
			b.recError(report.KindDef, v.Span(), "type declarations cannot be nested in class `%s`", ci.typ.Name)
		default:
			report.ICE("binder: unhandled class member %T", member)
		}
	}
}

func (b *Binder) addField(typ *types.Type, name string, span *report.TextSpan, fieldType *types.Type) {
	switch fieldType.Kind {
	case types.KindUnit, types.KindNull:
		b.recError(report.KindType, span, "field `%s.%s` cannot be of type `%s`", typ.Name, name, fieldType)
		return
	}

	if !typ.Members.AddField(name, fieldType) {
		b.recError(report.KindDef, span, "multiple fields named `%s` defined in `%s`", name, typ.Name)
	}
}

// checkRecursiveContainment reports every struct-shaped type that contains
// itself by value: such types have no finite size.
func (b *Binder) checkRecursiveContainment(structTypes []*types.Type, infos []*classInfo) {
	check := func(typ *types.Type, span *report.TextSpan) {
		if typ != nil && containsType(typ, typ, make(map[int]bool)) {
			b.recError(report.KindDef, span, "type `%s` contains itself", typ.Name)
		}
	}

	for _, typ := range structTypes {
		if typ != nil {
			check(typ, b.findStructSpan(typ))
		}
	}

	for _, ci := range infos {
		check(ci.typ, ci.decl.Span())
	}
}

func (b *Binder) findStructSpan(typ *types.Type) *report.TextSpan {
	for _, sd := range b.program.Structs {
		if sd.Type == typ {
			return sd.Span()
		}
	}

	return nil
}

// containsType returns whether `current` contains `target` by value.
func containsType(target, current *types.Type, seen map[int]bool) bool {
	for _, field := range current.Members.Fields {
		ft := field.Type
		for ft.IsArray {
			ft = ft.ElementType
		}

		if !ft.IsStructShaped() {
			continue
		}

		if ft.ID == target.ID {
			return true
		}

		if !seen[ft.ID] {
			seen[ft.ID] = true
			if containsType(target, ft, seen) {
				return true
			}
		}
	}

	return false
}

// bindClass binds all the methods of a class within the class's scope.
func (b *Binder) bindClass(ci *classInfo) {
	h := b.scopes.Push()
	defer h.Release()
	ci.frame = h.Frame()

	prevClass := b.class
	b.class = ci
	defer func() {
		b.class = prevClass
	}()

	for _, c := range ci.order {
		b.bindCallable(c)
	}
}

// -----------------------------------------------------------------------------

// bindVarDecl binds a global or local variable declaration.
func (b *Binder) bindVarDecl(vd *ast.VarDecl, isGlobal bool) *bound.VariableDeclaration {
	var typ *types.Type
	if vd.Type != nil {
		typ = b.resolveType(vd.Type)
	}

	var init bound.Expression
	if vd.Init != nil {
		init = b.bindExpr(vd.Init)
	}

	switch {
	case typ != nil && init != nil:
		init = b.convertImplicit(init, typ, vd.Init.Span())
	case typ != nil:
		if vd.ReadOnly {
			b.recError(report.KindUsage, vd.Span(), "read-only variable `%s` must be initialised", vd.Name)
		}

		init = b.defaultValue(typ, vd.Span())
	case init != nil:
		typ = init.Type()

		switch typ.Kind {
		case types.KindNull:
			b.recError(report.KindType, vd.Init.Span(), "unable to infer type of `%s` from null", vd.Name)
			typ = types.Error
		case types.KindUnit:
			b.recError(report.KindType, vd.Init.Span(), "cannot initialise `%s` with a value of type `unit`", vd.Name)
			typ = types.Error
		}
	default:
		b.recError(report.KindDef, vd.Span(), "variable `%s` must have either a type or an initializer", vd.Name)
		typ = types.Error
	}

	if typ.Kind == types.KindUnit {
		b.recError(report.KindType, vd.Span(), "variable `%s` cannot be of type `unit`", vd.Name)
		typ = types.Error
	}

	sym := common.NewVariableSymbol(vd.Name, vd.ReadOnly, typ, isGlobal, false)
	if _, err := b.scopes.Define(vd.Name, typ, sym); err != nil {
		b.recError(report.KindDef, vd.Span(), "multiple symbols named `%s` defined in the same scope", vd.Name)
	}

	return b.factory.NewVariableDeclaration(vd.Span(), sym, init)
}

// defaultValue returns the value a variable of the given type holds when it is
// declared without an initializer.  It returns nil for aggregate types: their
// storage is zero-initialised.
func (b *Binder) defaultValue(typ *types.Type, span *report.TextSpan) bound.Expression {
	switch typ.Kind {
	case types.KindInt:
		return b.factory.NewLiteral(span, int32(0), typ)
	case types.KindFloat:
		return b.factory.NewLiteral(span, 0.0, typ)
	case types.KindByte:
		return b.factory.NewLiteral(span, uint8(0), typ)
	case types.KindBool:
		return b.factory.NewLiteral(span, false, typ)
	case types.KindString:
		return b.factory.NewLiteral(span, "", typ)
	case types.KindPointer, types.KindFunction:
		return b.factory.NewLiteral(span, nil, typ)
	}

	return nil
}
