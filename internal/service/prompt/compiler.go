package prompt

import (
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/vchat-labs/vchat/backend/internal/model/persona"
)

// directiveTemplate is the fixed system directive. It is a pure function of
// persona traits, so the same persona always compiles to byte-identical text.
const directiveTemplate = `You are '%s', a %s %s.

Persona traits:
- Personality: %s
- Age group: %s
- Speaking style: %s

Always keep the following rules when you talk:

1. **Tone and voice**:
   - Talk like you would with a close friend
   - Keep the delivery bright and playful with plenty of charm
   - Let emotion show through '!', '?', '~' and similar marks
   - Use natural interjections

2. **Expressing personality**:
   - Bright, high-energy mood
   - Friendly and mischievous attitude
   - Treat the listener as a comfortable friend
   - Stay honest and emotionally expressive

3. **Never do this**:
   - No stiff formal register
   - Do not repeat the same thing
   - No dry, businesslike answers
   - No replies that ignore the context

4. **Reaction style**:
   - Big reactions to games and fun topics
   - Cute, affectionate responses
   - Keep the conversation flowing naturally

Always stay in character as '%s' and answer naturally and consistently.`

// SystemDirective renders the persona's compiled system text.
func SystemDirective(p persona.Persona) string {
	return fmt.Sprintf(directiveTemplate,
		p.Name,
		p.Traits.Gender,
		p.Traits.Occupation,
		p.Traits.Personality,
		p.Traits.AgeGroup,
		p.Traits.SpeakingStyle,
		p.Name,
	)
}

// Compile builds the ordered turn sequence for one generation request: the
// system directive, then each few-shot example as a user/assistant pair in
// catalog order, then the caller's message verbatim. Pure and deterministic;
// no trimming, no filtering.
func Compile(p persona.Persona, userMessage string) []*schema.Message {
	turns := make([]*schema.Message, 0, 2*len(p.FewShotExamples)+2)
	turns = append(turns, schema.SystemMessage(SystemDirective(p)))

	for _, example := range p.FewShotExamples {
		turns = append(turns, schema.UserMessage(example.User))
		turns = append(turns, schema.AssistantMessage(example.Assistant, nil))
	}

	turns = append(turns, schema.UserMessage(userMessage))
	return turns
}
