// Package qtpeek reconstructs human-readable views of Qt 4 implicitly-shared
// containers and value types from the raw memory of a paused process, without
// any cooperation from that process.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	qtpeek/          Root package with the Memory, TypeOracle and Value interfaces
//	├── resolver/    Type-name resolution with a memoizing cache
//	├── layout/      Versioned binary-layout descriptors for Qt private structs
//	├── decode/      Dispatch registry, safety gates and per-type decoders
//	├── snapshot/    CBOR memory-image files implementing Memory and TypeOracle
//	├── config/      TOML configuration for limits and layout profiles
//	└── errors/      Structured error types for debugging
//
// # Quick Start
//
// Inspect a value inside a snapshot:
//
//	snap, err := snapshot.Open("paused.qtsnap")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eng, err := decode.NewEngine(snap, snap, snap.Arch(), decode.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, ok := eng.Inspect(qtpeek.Value{TypeName: "QString", Addr: 0x804a000})
//	if ok {
//	    fmt.Println(res.Summary) // "hello world"
//	}
//
// # Safety Model
//
// Every decoder validates the shared-buffer header (reference count and element
// count, both capped at 512) before touching payload memory. Any gate failure
// or mid-traversal fault degrades to a fixed placeholder string; the engine
// never propagates a fault to the host and never writes debuggee memory.
//
// # Supported Types
//
// QString, QByteArray, QChar, QDate, QTime, QDateTime, QUrl, QList,
// QStringList, QQueue, QVector, QStack, QLinkedList, QMap, QMultiMap, QHash,
// QMultiHash and QSet. The catalog is fixed: arbitrary user-defined types fall
// back to host default rendering.
//
// # Thread Safety
//
// Engine is safe for concurrent use; the type-name cache is guarded by a
// mutex. Child iterators are NOT thread-safe and are not restartable: obtain a
// fresh iterator per enumeration.
package qtpeek
