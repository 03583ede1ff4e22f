// Package app composes the study layer's services into a running
// application.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct and wiring
//	├── domain/             # Domain models (pure data structures)
//	│   ├── study/          # Generated study artifacts
//	│   ├── note/           # Journal notes
//	│   └── entitlement/    # Subscription and usage gate state
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # Store interfaces
//	│   ├── memory/         # In-memory implementation for tests
//	│   ├── postgres/       # PostgreSQL implementation for production
//	│   └── redis/          # Redis-backed usage counter
//	├── generation/         # Model invocation and output parsing
//	├── search/             # Commentary search index client
//	├── services/           # Business logic
//	│   ├── entitlements/   # Usage gate and purchases
//	│   ├── mentor/         # Question answering with assembled context
//	│   ├── studies/        # Study generation and retrieval
//	│   ├── passages/       # Passage rotation
//	│   └── prompt/         # Prompt templates and input sanitation
//	├── httpapi/            # HTTP handlers and routing
//	└── runtime/            # Config-driven process assembly
//
// Business logic lives under services/; this package only wires stores and
// providers into service constructors. HTTP concerns stay in httpapi/, and
// process concerns (config, signal handling, background jobs) in runtime/.
package app
