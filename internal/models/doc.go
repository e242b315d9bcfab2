// Package models defines domain entities and persistence interfaces for the recipe import service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs moving recipe data between pipeline stages
//   - [SourceRecipe] : Recipe content scraped from an arbitrary cooking site
//   - [RecipeDraft] : Translator output in appliance notation, with unverified annotation positions
//   - [RecipePatch] : Partial update payload accepted by the recipe platform
//   - [Annotation] : A positioned appliance setting or ingredient reference inside a step text
//   - [SessionCredential] : The cookie pair that authorizes recipe API calls
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedImport] : Source URL to platform recipe pairing, cached to make re-imports idempotent
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
