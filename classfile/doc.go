// Package classfile describes the class metadata the layout manager consumes.
//
// Parsing JVM class files is done elsewhere; this package only models the
// parts of a class the type registry needs (kind, instance fields, virtual
// methods, superclass and interfaces) together with a Loader interface and
// two loaders: an in-memory MapLoader and a JSON hierarchy Document used by
// the classlayout command.
package classfile
