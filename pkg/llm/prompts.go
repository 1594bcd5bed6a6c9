package llm

// default system prompt for persona generation
const defaultSystemPrompt = `You are an expert user researcher and persona analyst. Your task is to analyze Reddit posts and comments to create a comprehensive, enhanced user persona.

Based on the provided Reddit data, you must:
1. Analyze the content for patterns, interests, communication style, and behavior
2. Make reasonable inferences about demographics, psychographics, and personality traits
3. Provide specific citations from the posts/comments for each characteristic
4. Be respectful and avoid negative judgments
5. Focus on constructive insights for understanding the user
6. Assign personality percentages based on MBTI-style dimensions
7. Rate motivations with intensity scores (0-100)

Return your analysis in VALID JSON format with the exact structure specified in the user message.`

// contentPlaceholder marks where the formatted content block goes in the
// user prompt. Replaced verbatim, not via Sprintf, because the template
// itself contains % characters.
const contentPlaceholder = "{reddit_data}"

const userPromptTemplate = `Analyze the following Reddit posts and comments to create a detailed, enhanced user persona:

Reddit Data:
{reddit_data}

Create a comprehensive user persona and return it in this EXACT JSON format:
{
    "name": "Inferred or generic name (e.g., 'Tech Professional', 'Gaming Enthusiast')",
    "age_range": "Estimated age range (e.g., '25-35', '18-25')",
    "location": "Inferred location or 'Unknown'",
    "occupation": "Inferred occupation or industry",
    "status": "Social/professional status (e.g., 'Student', 'Professional', 'Freelancer', 'Entrepreneur')",
    "tier": "Experience/skill tier (e.g., 'Beginner', 'Intermediate', 'Advanced', 'Expert')",
    "archetype": "User archetype (e.g., 'The Explorer', 'The Creator', 'The Helper', 'The Achiever', 'The Sage')",
    "interests": ["list", "of", "interests", "based", "on", "posts"],
    "personality_traits": ["list", "of", "personality", "traits"],
    "goals": ["list", "of", "apparent", "goals"],
    "frustrations": ["list", "of", "frustrations"],
    "preferred_subreddits": ["list", "of", "frequented", "subreddits"],
    "communication_style": "Description of how they communicate",
    "technology_comfort": "Level of technology comfort (Low/Medium/High/Expert)",
    "social_media_behavior": "Description of their social media behavior",
    "motivations": {
        "achievement": 75,
        "social_connection": 60,
        "knowledge_seeking": 85,
        "creative_expression": 40,
        "helping_others": 70,
        "recognition": 30
    },
    "behavior_habits": ["list", "of", "observable", "behavior", "patterns"],
    "personality_percentages": {
        "introversion": 65,
        "intuition": 80,
        "feeling": 45,
        "perceiving": 70
    },
    "citations": {
        "interests": ["Specific quote: 'quote from post/comment'"],
        "personality_traits": ["Specific quote: 'quote from post/comment'"],
        "goals": ["Specific quote: 'quote from post/comment'"],
        "frustrations": ["Specific quote: 'quote from post/comment'"],
        "occupation": ["Specific quote: 'quote from post/comment'"],
        "location": ["Specific quote: 'quote from post/comment'"],
        "age_range": ["Specific quote: 'quote from post/comment'"],
        "status": ["Specific quote: 'quote from post/comment'"],
        "tier": ["Specific quote: 'quote from post/comment'"],
        "archetype": ["Specific quote: 'quote from post/comment'"],
        "communication_style": ["Specific quote: 'quote from post/comment'"],
        "technology_comfort": ["Specific quote: 'quote from post/comment'"],
        "social_media_behavior": ["Specific quote: 'quote from post/comment'"],
        "motivations": ["Specific quote: 'quote from post/comment'"],
        "behavior_habits": ["Specific quote: 'quote from post/comment'"],
        "personality_percentages": ["Specific quote: 'quote from post/comment'"]
    }
}

Important guidelines for enhanced sections:

STATUS: Infer from posts about work, education, life stage (Student, Professional, Freelancer, Entrepreneur, Retiree, etc.)

TIER: Assess expertise level in their main domains (Beginner, Intermediate, Advanced, Expert)

ARCHETYPE: Choose from common user archetypes:
- The Explorer (curious, adventurous)
- The Creator (creative, innovative)
- The Helper (supportive, nurturing)
- The Achiever (goal-oriented, competitive)
- The Sage (wise, knowledge-seeking)
- The Rebel (unconventional, challenging)
- The Caregiver (empathetic, protective)

MOTIVATIONS: Rate intensity (0-100) for:
- achievement (accomplishing goals)
- social_connection (building relationships)
- knowledge_seeking (learning, understanding)
- creative_expression (creating, innovating)
- helping_others (supporting, teaching)
- recognition (fame, acknowledgment)

PERSONALITY PERCENTAGES (0-100):
- introversion: 0=extremely extroverted, 100=extremely introverted
- intuition: 0=extremely sensing/practical, 100=extremely intuitive/abstract
- feeling: 0=extremely thinking/logical, 100=extremely feeling/emotional
- perceiving: 0=extremely judging/structured, 100=extremely perceiving/flexible

BEHAVIOR & HABITS: Observable patterns like posting frequency, interaction style, topic preferences, etc.

Base ALL inferences on actual content from the posts/comments
Provide specific quotes as citations for each characteristic
Use "Unknown" if information cannot be inferred
Keep quotes under 100 characters when possible
Ensure JSON is valid and properly formatted`
