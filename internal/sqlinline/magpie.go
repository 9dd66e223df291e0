package sqlinline

const QListProductOpportunities = `--sql 33999c05-7e30-4b24-a42d-2ce76274188d
select
  id,
  product_name,
  coalesce(description, ''),
  coalesce(category, ''),
  coalesce(opportunity_score, 0),
  coalesce(profit_margin, 0),
  coalesce(trending_on, '{}'::text[]),
  created_at,
  coalesce(airtable_record_id, '')
from product_opportunities
where opportunity_score >= $1::int
  and ($2::text = '' or category = $2::text)
order by opportunity_score desc, created_at desc
limit $3::int;
`

const QListAgentStatuses = `--sql dab0f5ac-4cf1-4a91-860d-4f3de7819964
select agent_id, agent_name, model, responsibility, status, current_task, last_active, metric_label, metric_value
from (
  select distinct on (agent_id)
    agent_id,
    coalesce(agent_name, agent_id) as agent_name,
    coalesce(model, '')            as model,
    coalesce(responsibility, '')   as responsibility,
    coalesce(status, 'idle')       as status,
    coalesce(current_task, '')     as current_task,
    last_active,
    nullif(metric_label, '') as metric_label,
    nullif(metric_value, '') as metric_value
  from agent_status
  order by agent_id, last_active desc nulls last
) latest
order by agent_name;
`

const QListActivityFeed = `--sql 5e14b835-d20a-4e4d-8e09-c8d1595155e1
select
  id,
  coalesce(activity_type, ''),
  coalesce(title, ''),
  coalesce(description, ''),
  coalesce(agent_id, ''),
  coalesce(source, ''),
  created_at
from activity_log
where ($1::text = '' or activity_type = $1::text)
order by created_at desc
limit $2::int;
`

const QInsertActivity = `--sql 2f2e0b49-90d4-4995-a29c-ef9e3cf2ca28
insert into activity_log(id, activity_type, title, description, agent_id, source, created_at)
values (gen_random_uuid(), $1::text, $2::text, $3::text, nullif($4::text, ''), $5::text, now());
`

const QListTrendingTopics = `--sql e1fa1d77-3f7f-402d-97a3-4dead9b5fecb
select
  topic,
  coalesce(platform, ''),
  coalesce(score, 0),
  coalesce(velocity, 'flat'),
  collected_at
from trending_topics
where ($1::text = '' or platform = $1::text)
order by score desc, collected_at desc
limit 100;
`

const QDashboardStats = `--sql 2987ebdb-d782-4abd-9f50-599f473db45a
select
  (select count(distinct agent_id) from agent_status where status = 'active') as active_agents,
  (select count(distinct agent_id) from agent_status)                         as total_agents,
  (select count(*) from product_opportunities where opportunity_score >= 80)  as high_score_count,
  (select count(*) from product_opportunities)                                as product_count,
  (select count(*) from activity_log where created_at > now() - interval '24 hours') as activity_last24;
`
