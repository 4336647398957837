package value

import "github.com/mna/loxcraft/internal/lox/table"

// MethodTable maps method names to the Closure implementing them.
type MethodTable = table.Table[*String, Value]

// Class is a LoxLang class: a name and a method table populated at
// declaration time and, for subclasses, copied down from the superclass
// before the class's own methods are added (spec §3, §4.1 "Inheritance is
// method copy-down").
type Class struct {
	ObjHeader
	Name    *String
	Methods *MethodTable
}

var _ Object = (*Class)(nil)

// NewClass returns an empty class named name.
func NewClass(name *String) *Class {
	return &Class{ObjHeader: ObjHeader{Kind: ObjClass}, Name: name, Methods: table.New[*String, Value]()}
}

// Instance is an object instantiated from a Class, holding its own field
// table (spec §3).
type Instance struct {
	ObjHeader
	Class  *Class
	Fields *table.Table[*String, Value]
}

var _ Object = (*Instance)(nil)

// NewInstance returns a new, field-less instance of class.
func NewInstance(class *Class) *Instance {
	return &Instance{ObjHeader: ObjHeader{Kind: ObjInstance}, Class: class, Fields: table.New[*String, Value]()}
}

// BoundMethod pairs a receiver with the Closure implementing the method
// looked up on it; calling it installs Receiver into slot 0 of the new
// frame (spec §3, §4.2).
type BoundMethod struct {
	ObjHeader
	Receiver Value
	Method   *Closure
}

var _ Object = (*BoundMethod)(nil)

// NewBoundMethod returns a BoundMethod pairing receiver with method.
func NewBoundMethod(receiver Value, method *Closure) *BoundMethod {
	return &BoundMethod{ObjHeader: ObjHeader{Kind: ObjBoundMethod}, Receiver: receiver, Method: method}
}
