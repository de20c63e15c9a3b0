/*
Package domain contains the core models of the survey logic engine.

It defines answers, logic rules, questions and the derived results of evaluation.
This package is kept pure and free of I/O or persistence concerns, following
Hexagonal Architecture principles.

# Key Entities

  - Answer: Tagged union of the values a respondent may give (text, number, choices, matrix, files).
  - LogicRule: A condition on a source answer plus a Show, Hide, Skip, JumpTo or EndSurvey action.
  - Question: The logic relevant projection of a survey question and its rules.
  - VisibilityResult: The per-question verdict (visible, skip/jump target, end signal).
  - Progress: The persisted snapshot of a response session.
*/
package domain
