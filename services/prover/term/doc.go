// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package term defines the term algebra the proof engine operates on.
//
// Architecture:
//
//	Every sub-term occurrence is wrapped in an Addressable, which carries a
//	stable address key and a payload that is either a concrete value or a
//	meta-variable (a pattern placeholder that unification may bind):
//
//	  Addressable[Relation]
//	    └── Equal
//	          ├── Addressable[Expression] → Var{x}
//	          └── Addressable[Expression] → TheoryExpr{group.mul, ...}
//	                                          ├── Addressable[Expression] → meta ?A
//	                                          └── Addressable[Expression] → Number{1}
//
//	Three kinds of variables are distinguished:
//	  - bound variables: Var references to a goal quantifier
//	  - free variables:  Var references to a context entry
//	  - meta-variables:  Addressable payloads created with Meta
//
// Addresses:
//
//	Addresses are minted (UUID) when a node is constructed and copied when a
//	term is copied, so they are unique within one goal snapshot but not
//	across proof history. Equality helpers in this package ignore addresses.
//
// Thread Safety:
//
//	Terms are immutable values once built. Operations that "modify" a term
//	return a rebuilt copy and leave the input untouched.
package term
