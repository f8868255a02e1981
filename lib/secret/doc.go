// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides page-mapped memory for sensitive data such as
// passphrases, derived keys, and decrypted vault contents.
//
// Every byte handed out by this package comes from an anonymous,
// private, read-write mapping obtained directly from the operating
// system (mmap on Unix, VirtualAlloc on Windows). Nothing is cached or
// reused: each allocation is a fresh mapping, and each release
// overwrites the entire mapping with zeros before returning it to the
// OS. Because the memory lives outside the Go heap, the garbage
// collector never copies or relocates it.
//
// Layers, leaf first:
//
//   - [Platform] -- the OS capability: Map, Unmap, Lock, Unlock,
//     PageSize. [Native] selects the backend at build time.
//   - [Region] -- an owned mapping. [Acquire] creates one,
//     [Region.Release] zero-fills and unmaps it exactly once.
//   - [Allocator] -- the process-wide allocate/deallocate pair. It
//     holds only immutable configuration, so concurrent calls need no
//     locking. [Install] sets it once for the process; [Default]
//     returns it.
//   - [Buffer] -- a closeable secret value built on the allocator,
//     with constructors for bytes, readers, and files.
//
// Unmap failures are never fatal. The zero fill happens first, so a
// mapping that lingers after a failed unmap holds no secret bytes.
package secret
