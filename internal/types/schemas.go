package types

// JSON schemas embedded into the analyzer and verifier instructions so the
// engine formats its structured reports predictably. Kept as literals rather
// than generated from the structs: the prompt text is part of the contract
// and should not shift when a field is reordered.

// AnalysisReportSchema is the schema the analysis phase must conform to.
const AnalysisReportSchema = `{
  "type": "object",
  "properties": {
    "project_name": {"type": "string"},
    "language": {"type": "string"},
    "framework": {"type": "string"},
    "description": {"type": "string"},
    "system_requirements": {"type": "array", "items": {"type": "string"}},
    "dependencies": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "version_constraint": {"type": "string"},
          "purpose": {"type": "string"}
        },
        "required": ["name", "version_constraint", "purpose"]
      }
    },
    "env_variables": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "required": {"type": "boolean"},
          "description": {"type": "string"},
          "example_value": {"type": "string"}
        },
        "required": ["name", "required", "description", "example_value"]
      }
    },
    "setup_steps": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "order": {"type": "integer"},
          "command": {"type": "string"},
          "description": {"type": "string"},
          "expected_output": {"type": ["string", "null"]},
          "working_directory": {"type": ["string", "null"]}
        },
        "required": ["order", "command", "description"]
      }
    },
    "build_commands": {"type": "array", "items": {"type": "string"}},
    "run_commands": {"type": "array", "items": {"type": "string"}},
    "test_commands": {"type": "array", "items": {"type": "string"}},
    "docker_available": {"type": "boolean"},
    "additional_notes": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["project_name", "language", "framework", "description",
    "system_requirements", "dependencies", "env_variables", "setup_steps",
    "build_commands", "run_commands", "test_commands", "docker_available",
    "additional_notes"]
}`

// DocChangesSchema is the change summary the update phase must emit.
const DocChangesSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "file_path": {"type": "string"},
      "change_type": {"type": "string", "enum": ["created", "modified", "deleted"]},
      "summary": {"type": "string"}
    },
    "required": ["file_path", "change_type", "summary"]
  }
}`

// VerificationResultSchema is the schema the verify phase must conform to.
const VerificationResultSchema = `{
  "type": "object",
  "properties": {
    "overall_status": {"type": "string", "enum": ["pass", "fail"]},
    "steps": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "step_number": {"type": "integer"},
          "command": {"type": "string"},
          "status": {"type": "string", "enum": ["pass", "fail", "unclear", "skipped"]},
          "actual_output": {"type": "string"},
          "expected_output": {"type": ["string", "null"]},
          "error_message": {"type": ["string", "null"]}
        },
        "required": ["step_number", "command", "status", "actual_output"]
      }
    },
    "environment_info": {"type": "string"},
    "suggestions": {"type": "array", "items": {"type": "string"}},
    "consecutive_failures": {"type": "integer"}
  },
  "required": ["overall_status", "steps", "environment_info", "suggestions",
    "consecutive_failures"]
}`
