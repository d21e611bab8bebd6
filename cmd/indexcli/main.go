// Command indexcli is a thin harness wiring the core indexing components
// (ParserRegistry, ChunkIndex, GraphIndex, Watcher) into a runnable CLI. It
// does no semantic work of its own.
package main

func main() {
	Execute()
}
