// Package atlas implements the shelf packer, growth planning and index entry
// encoding of a glyph atlas.
//
// The atlas texture has a fixed width and a height that doubles on demand.
// The index buffer capacity doubles the same way. Planning is separate from
// committing so that a batch that would exceed the maximum texture size
// leaves the atlas untouched.
package atlas
