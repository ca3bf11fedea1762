// Package ir provides the foundation types shared by every tsg package.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps IR the foundational
// layer with no circular dependencies.
//
// Contents:
//   - Quantifier: the four-valued cardinality of a capture or expression
//   - Annotations: the side table the checker fills with resolved capture
//     indices, consumed by the execution stage
//   - MarshalCanonical and the domain-separated hashes used for content
//     identity of programs and annotation sets
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - All JSON tags use snake_case
package ir
