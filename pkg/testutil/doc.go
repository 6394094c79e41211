// Package testutil provides fakes for testing archstep components.
//
// Key components:
//   - MemoryFS: in-memory types.FS with error injection and write counting
//   - FakeCommander: scripted command.Commander that records every call
//   - FakeProbe: configurable system.Probe
//   - ScriptedPrompter: prompt.Prompter answering from a queue
//
// Usage guidelines:
//   - Stage and runner tests use MemoryFS so a test can assert exactly which
//     files were written
//   - Store and tracker tests use the real filesystem under t.TempDir
package testutil
