package pipeline

import "fmt"

// extractionPromptFmt asks the model for the question list as a bare JSON
// array. The schema mirrors model.Question's JSON tags so the reply decodes
// directly.
const extractionPromptFmt = `
请解析以下题目文本，返回JSON格式的题目列表。

要求：
1. 识别每个题目的题号、题干、选项、正确答案和解析
2. 判断题目类型（单选/多选）
3. 只返回JSON格式，不要任何其他文字

题目文本：
%s

请严格按照以下JSON格式返回：
[
  {
    "question_number": 1,
    "question_text": "题目内容",
    "options": {"A": "选项A", "B": "选项B", "C": "选项C", "D": "选项D"},
    "question_type": "single",
    "correct_answers": ["A"],
    "explanation": "解析内容"
  }
]
`

func buildPrompt(text string) string {
	return fmt.Sprintf(extractionPromptFmt, text)
}
