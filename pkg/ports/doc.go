/*
Package ports defines the driven ports (interfaces) for the survey logic engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends and survey sources.

# Key Interfaces

  - SurveyLoader: Responsible for loading survey definitions (e.g., from files or memory).
  - ProgressStore: Responsible for persisting and loading response-session progress.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - AnswerValidator: Checks an answer before the respondent moves on.
*/
package ports
