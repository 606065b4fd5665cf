package config

// AnnotatedDefault is the commented YAML document `config init` writes.
// Marshaling Defaults() directly would lose the field-by-field guidance a
// first-time user needs, so the init command emits this literal template
// instead of round-tripping through yaml.Marshal.
const AnnotatedDefault = `# kobanashi pipeline configuration
project:
  name: my-video       # used for the remotion workspace and logging prefix
  output_dir: ./output # project directory; see Project Layout in the docs

style:
  width: 1920
  height: 1080
  fps: 30
  crf: 18              # lower = higher quality, larger file

content:
  languages: [ja]      # one script + slide set per language
  llm:
    model: anthropic/claude-sonnet-4
    base_url: ""       # override to point at a compatible gateway

narration:
  mode: single         # single | dialogue
  style: ""            # free-text tone hint passed to the prompt

personas: []
  # - id: zundamon
  #   name: Zundamon
  #   character: energetic and curious
  #   synthesizer:
  #     engine: voicevox
  #     speaker_id: 3
  #     speed_scale: 1.0
  #   subtitle_color: "#8FCF4F"

persona_pool:
  enabled: false
  count: 1
  seed: null

audio:
  dict_dir: dict
  model_path: models
  enable_furigana: false
  pronunciation_model: ""
  voicevox_url: http://127.0.0.1:50021

slides:
  llm:
    model: google/gemini-2.5-flash-image
  max_concurrent: 3    # 1-10
  max_retries: 4
  retry_delay: 1.0

video:
  renderer: remotion
  transition:
    type: fade          # none | fade | wipe | slide
    duration_frames: 15
  background: null
  bgm: ""
  render_concurrency: 2
  render_timeout_seconds: 600

pronunciation:
  custom: []
  # - surface: "3"
  #   reading: "スリー"
  #   accent_type: 0
  #   word_type: COMMON_NOUN
`
